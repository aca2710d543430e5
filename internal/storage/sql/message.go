package sql

import (
	"time"

	"github.com/google/uuid"

	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/storage"
)

// ========== Message Repository ==========

// AppendMessage 为用户追加一条留言
func (s *Store) AppendMessage(ownerID string, message *domain.Message) error {
	if _, err := s.GetUserByID(ownerID); err != nil {
		return err
	}

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	message.OwnerID = ownerID

	query := s.rebind(`
		INSERT INTO messages (id, owner_id, content, author, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		message.ID,
		message.OwnerID,
		message.Content,
		message.Author,
		message.CreatedAt,
	)
	return err
}

// ListMessages 列出用户的全部留言（按插入顺序）
func (s *Store) ListMessages(ownerID string) ([]domain.Message, error) {
	if _, err := s.GetUserByID(ownerID); err != nil {
		return nil, err
	}

	query := s.rebind(`
		SELECT id, owner_id, content, author, created_at
		FROM messages
		WHERE owner_id = ?
		ORDER BY created_at ASC, id ASC
	`)
	rows, err := s.db.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Content, &m.Author, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// DeleteMessage 删除用户的一条留言
//
// 留言不存在或不属于该用户时返回 ErrMessageNotFound。
func (s *Store) DeleteMessage(ownerID, messageID string) error {
	query := s.rebind(`DELETE FROM messages WHERE id = ? AND owner_id = ?`)
	result, err := s.db.Exec(query, messageID, ownerID)
	if err != nil {
		return err
	}
	return requireRowAffected(result, storage.ErrMessageNotFound)
}
