package store

import "time"

// DocumentRecord 는 색인된 신문 호(issue) 한 건이다.
type DocumentRecord struct {
	ID         string    `gorm:"primaryKey;size:16"`
	Location   string    `gorm:"size:512;not null"`
	TokenCount int       `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// TableName: 문서 테이블 이름
func (DocumentRecord) TableName() string { return "tig_documents" }

// PostingRecord 는 (용어, 문서) 쌍과 문서 내 빈도다.
type PostingRecord struct {
	Term       string `gorm:"primaryKey;size:128"`
	DocumentID string `gorm:"primaryKey;size:16;index"`
	Freq       int    `gorm:"not null"`
}

// TableName: 포스팅 테이블 이름
func (PostingRecord) TableName() string { return "tig_postings" }
