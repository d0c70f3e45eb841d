package model

import "encoding/json"

type QuizStatus string

const (
	QuizDraft     QuizStatus = "draft"
	QuizScheduled QuizStatus = "scheduled"
	QuizActive    QuizStatus = "active"
	QuizCompleted QuizStatus = "completed"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
	Numerical      QuestionType = "numerical"
	ShortAnswer    QuestionType = "short-answer"
)

// Quiz 测验定义，生命周期 draft -> active -> completed，单向推进
// swagger:model Quiz
type Quiz struct {
	UUIDBase
	Title            string         `gorm:"size:255;not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	Code             string         `gorm:"size:10;uniqueIndex;not null" json:"code"`
	TimeLimit        int            `gorm:"default:10" json:"timeLimit"` // Minutes
	ShuffleQuestions bool           `gorm:"default:false" json:"shuffleQuestions"`
	ShuffleOptions   bool           `gorm:"default:false" json:"shuffleOptions"`
	Status           QuizStatus     `gorm:"size:20;default:'draft';index" json:"status"`
	CreatedBy        uint           `gorm:"index;type:bigint unsigned" json:"createdBy"`
	Questions        []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model QuizQuestion
type QuizQuestion struct {
	UUIDBase
	QuizID        string          `gorm:"index;type:varchar(36)" json:"quizId"`
	Type          QuestionType    `gorm:"size:20;not null" json:"type"`
	Text          string          `gorm:"type:text;not null" json:"text"`
	Options       json.RawMessage `gorm:"type:json" json:"options,omitempty"` // JSON: []string，numerical/short-answer 为空
	CorrectAnswer string          `gorm:"type:text" json:"correctAnswer,omitempty"`
	Order         int             `gorm:"default:0" json:"order"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// OptionList 解码题目选项，列值为空时返回空切片
func (q *QuizQuestion) OptionList() []string {
	if len(q.Options) == 0 {
		return nil
	}
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}
