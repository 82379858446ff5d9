package question

import (
	"time"

	"github.com/google/uuid"
)

// NewFromPostRequest assigns the question its identifier. Questions are
// immutable after this point.
func NewFromPostRequest(req PostQuestionRequest, userID string) Question {
	return Question{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Tag:         req.Tag,
		CreatedAt:   time.Now().UTC(),
	}
}
