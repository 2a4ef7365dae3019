package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Information is a curated free-text fact about the site owner. A nil Text marks an
// information gap recorded by the chatbot and waiting for an admin to fill it in.
type Information struct {
	ID            uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Text          *string   `gorm:"type:text" json:"text"`
	EmbeddingJSON *string   `gorm:"type:longtext" json:"-"`
	Keywords      []Keyword `gorm:"foreignKey:InformationID;constraint:OnDelete:CASCADE" json:"keywords"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Keyword struct {
	ID            uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	InformationID uuid.UUID `gorm:"type:char(36);not null;index" json:"information_id"`
	Text          string    `gorm:"size:128;not null" json:"text"`
}

func (i *Information) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (k *Keyword) BeforeCreate(*gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

// NewInformation builds a snippet with one keyword row per non-blank token.
func NewInformation(text *string, keywords []string) *Information {
	info := &Information{ID: uuid.New(), Text: text}
	info.SetKeywords(keywords)
	return info
}

// SetKeywords replaces the keyword rows, trimming and dropping case-insensitive duplicates.
func (i *Information) SetKeywords(keywords []string) {
	seen := make(map[string]struct{}, len(keywords))
	rows := make([]Keyword, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		key := strings.ToLower(kw)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, Keyword{ID: uuid.New(), InformationID: i.ID, Text: kw})
	}
	i.Keywords = rows
}

func (i *Information) KeywordTexts() []string {
	out := make([]string, 0, len(i.Keywords))
	for _, kw := range i.Keywords {
		out = append(out, kw.Text)
	}
	return out
}

func (i *Information) TextValue() string {
	if i.Text == nil {
		return ""
	}
	return *i.Text
}

func (i *Information) IsGap() bool {
	return strings.TrimSpace(i.TextValue()) == ""
}

func (i *Information) HasEmbedding() bool {
	return i.EmbeddingJSON != nil && *i.EmbeddingJSON != ""
}

func (i *Information) SetEmbedding(vec []float32) {
	i.EmbeddingJSON = EncodeEmbedding(vec)
}

// EncodeEmbedding serialises a vector as a JSON array; an empty vector encodes to nil.
func EncodeEmbedding(vec []float32) *string {
	if len(vec) == 0 {
		return nil
	}
	b, _ := json.Marshal(vec)
	s := string(b)
	return &s
}
