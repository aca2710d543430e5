package service

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/storage"
)

var (
	// ErrUserNotFound 收件人不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrNotAcceptingMessages 收件人关闭了留言接收
	ErrNotAcceptingMessages = errors.New("user is not accepting messages")
	// ErrMessageNotFound 留言不存在或已被删除
	ErrMessageNotFound = errors.New("message not found")
)

// 留言列表作者信息补全的并发上限
const enrichConcurrency = 8

// Notifier 新留言通知接口，由 WebSocket 推送中心实现
type Notifier interface {
	NotifyNewMessage(ownerID string, message *domain.Message)
}

// MessageService 封装留言处理逻辑。
type MessageService struct {
	store            storage.Store
	logger           *zap.Logger
	notifier         Notifier // 可选
	maxContentLength int
}

// NewMessageService 创建留言业务服务。
func NewMessageService(store storage.Store, logger *zap.Logger, maxContentLength int) *MessageService {
	if maxContentLength <= 0 {
		maxContentLength = domain.DefaultMaxContentLength
	}
	return &MessageService{
		store:            store,
		logger:           logger,
		maxContentLength: maxContentLength,
	}
}

// SetNotifier 设置新留言通知器
func (s *MessageService) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// SendInput 定义发送留言的输入。
//
// AuthorID 为空表示匿名留言；非空时记录发送者的用户 ID。
type SendInput struct {
	RecipientUsername string
	Content           string
	AuthorID          string
}

// Send 给指定用户名的收件人发送一条留言。
//
// 收件人不存在返回 ErrUserNotFound；收件人关闭接收时返回
// ErrNotAcceptingMessages，留言不会落库。
func (s *MessageService) Send(input SendInput) (*domain.Message, error) {
	if err := domain.ValidateMessageContent(input.Content, s.maxContentLength); err != nil {
		return nil, err
	}

	recipient, err := s.store.GetUserByUsername(input.RecipientUsername)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if !recipient.IsAcceptingMessages {
		return nil, ErrNotAcceptingMessages
	}

	author := domain.AnonymousAuthor
	if input.AuthorID != "" {
		author = input.AuthorID
	}

	message := &domain.Message{
		ID:        uuid.NewString(),
		Content:   input.Content,
		Author:    author,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.AppendMessage(recipient.ID, message); err != nil {
		return nil, err
	}

	s.logger.Info("message delivered",
		zap.String("recipient", recipient.Username),
		zap.Bool("anonymous", message.IsAnonymous()),
	)

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(recipient.ID, message)
	}

	return message, nil
}

// List 列出用户收到的全部留言，按时间倒序（最新在前）。
//
// 非匿名留言并发补全作者的用户名；作者查询失败或作者当前开启了
// 匿名发送时，该条退化为匿名展示，不暴露作者 ID。
func (s *MessageService) List(ownerID string) ([]domain.MessageView, error) {
	messages, err := s.store.ListMessages(ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) || errors.Is(err, storage.ErrInvalidID) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	views := make([]domain.MessageView, len(messages))
	g := new(errgroup.Group)
	g.SetLimit(enrichConcurrency)

	for i, m := range messages {
		i, m := i, m
		g.Go(func() error {
			views[i] = s.buildView(&m)
			return nil
		})
	}
	_ = g.Wait()

	// 存储返回的是追加顺序，并发写入时未必等于时间顺序，
	// 这里严格按 createdAt 倒序输出
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})

	return views, nil
}

// buildView 构造单条留言的展示条目
func (s *MessageService) buildView(m *domain.Message) domain.MessageView {
	view := domain.MessageView{
		ID:            m.ID,
		Content:       m.Content,
		Author:        domain.AnonymousAuthor,
		SendAnonymous: true,
		CreatedAt:     m.CreatedAt,
	}

	if m.IsAnonymous() {
		return view
	}

	author, err := s.store.GetUserByID(m.Author)
	if err != nil {
		s.logger.Warn("failed to resolve message author",
			zap.String("message_id", m.ID),
			zap.Error(err),
		)
		return view
	}
	if author.IsSendingAnonymously {
		return view
	}

	view.Author = m.Author
	view.AuthorUsername = author.Username
	view.SendAnonymous = false
	return view
}

// Delete 删除用户自己的一条留言。
//
// 删除是幂等失败的：留言不存在或已被删除时返回 ErrMessageNotFound。
func (s *MessageService) Delete(ownerID, messageID string) error {
	err := s.store.DeleteMessage(ownerID, messageID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrMessageNotFound):
		return ErrMessageNotFound
	case errors.Is(err, storage.ErrUserNotFound), errors.Is(err, storage.ErrInvalidID):
		return ErrUserNotFound
	default:
		return err
	}
}
