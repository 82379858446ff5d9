package question

import "time"

type Question struct {
	ID          string    `json:"questionid"`
	UserID      string    `json:"userid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tag         *string   `json:"tag"` // null when the poster gave none
	CreatedAt   time.Time `json:"createdAt"`
}

type PostQuestionRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=200"`
	Description string  `json:"description" binding:"required,min=1"`
	Tag         *string `json:"tag" binding:"omitempty,max=50"`
}
