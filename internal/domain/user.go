package domain

import "time"

// User 表示注册用户的业务实体
//
// Messages 为内嵌的留言列表（按插入顺序保存）。在 MongoDB 后端中整个
// 用户是一个文档，留言作为子文档数组存储；在关系型后端中留言单独成表，
// 此字段不落库。
type User struct {
	ID                   string     `json:"id" bson:"_id,omitempty" gorm:"primaryKey;type:varchar(36)"`
	Email                string     `json:"email" bson:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Username             string     `json:"username" bson:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	PasswordHash         string     `json:"-" bson:"passwordHash" gorm:"type:varchar(255)"` // 不返回给前端
	IsVerified           bool       `json:"isVerified" bson:"isVerified" gorm:"default:false"`
	VerifyCode           string     `json:"-" bson:"verifyCode,omitempty" gorm:"type:varchar(16)"`
	VerifyCodeExpiry     time.Time  `json:"-" bson:"verifyCodeExpiry,omitempty"`
	IsAcceptingMessages  bool       `json:"isAcceptingMessages" bson:"isAcceptingMessages" gorm:"default:true"`
	IsSendingAnonymously bool       `json:"isSendingAnonymously" bson:"isSendingAnonymously" gorm:"default:true"`
	Messages             []Message  `json:"-" bson:"messages" gorm:"-"`
	CreatedAt            time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt" bson:"updatedAt"`
	LastLoginAt          *time.Time `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`
}

// PublicProfile 公开的用户资料，供匿名访问者查询
type PublicProfile struct {
	Username             string `json:"username"`
	IsAcceptingMessages  bool   `json:"isAcceptingMessages"`
	IsSendingAnonymously bool   `json:"isSendingAnonymously"`
}

// PublicProfile 返回用户的公开资料视图
func (u *User) PublicProfile() PublicProfile {
	return PublicProfile{
		Username:             u.Username,
		IsAcceptingMessages:  u.IsAcceptingMessages,
		IsSendingAnonymously: u.IsSendingAnonymously,
	}
}
