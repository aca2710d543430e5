package domain

import "time"

// AnonymousAuthor 匿名留言的作者哨兵值
//
// 发送者未登录或选择匿名时，留言的 Author 固定为该值；否则 Author
// 保存发送者的用户 ID。
const AnonymousAuthor = "Anonymous"

// Message 表示收到的一条留言
//
// 留言创建后不可修改，只能由所有者按 ID 删除。
type Message struct {
	ID        string    `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID   string    `json:"-" bson:"-" gorm:"type:varchar(36);index;not null"` // 仅关系型后端使用
	Content   string    `json:"content" bson:"content" gorm:"type:varchar(1000);not null"`
	Author    string    `json:"author" bson:"author" gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" gorm:"index"`
}

// IsAnonymous 判断留言是否为匿名留言
func (m *Message) IsAnonymous() bool {
	return m.Author == AnonymousAuthor
}

// MessageView 是留言列表中的展示条目
//
// 非匿名留言会补充作者的展示用户名；当作者查询失败或作者本人开启了
// 匿名发送时，整体退化为匿名展示。
type MessageView struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	Author         string    `json:"author"`
	AuthorUsername string    `json:"authorUsername"`
	SendAnonymous  bool      `json:"sendAnonymous"`
	CreatedAt      time.Time `json:"createdAt"`
}
