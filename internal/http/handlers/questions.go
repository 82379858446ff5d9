package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soladu1/Q-A-By-SOL/internal/cache"
	"github.com/soladu1/Q-A-By-SOL/internal/config"
	"github.com/soladu1/Q-A-By-SOL/internal/domain/question"
	"github.com/soladu1/Q-A-By-SOL/internal/http/middlewares"
)

type QuestionStore interface {
	Create(ctx context.Context, req question.PostQuestionRequest, userID string) (question.Question, error)
	List(ctx context.Context) ([]question.Question, error)
}

type QuestionsHandler struct {
	repo  QuestionStore
	cache *cache.QuestionCache
}

func NewQuestionsHandler(repo QuestionStore, listCache *cache.QuestionCache) *QuestionsHandler {
	return &QuestionsHandler{
		repo:  repo,
		cache: listCache,
	}
}

func (h *QuestionsHandler) PostQuestion(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req question.PostQuestionRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	q, err := h.repo.Create(cctx, req, userID)

	if err != nil {
		respondStoreError(ctx, err, "Could not post question")
		return
	}

	h.cache.Invalidate(cctx)

	ctx.JSON(http.StatusCreated, gin.H{
		"message":    "Question posted successfully!",
		"questionId": q.ID,
	})
}

func (h *QuestionsHandler) ListQuestions(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	if items, ok := h.cache.Get(cctx); ok {
		RespondJSONWithETag(ctx, http.StatusOK, items)
		return
	}

	items, err := h.repo.List(cctx)

	if err != nil {
		respondStoreError(ctx, err, "Could not fetch questions")
		return
	}

	h.cache.Set(cctx, items)

	RespondJSONWithETag(ctx, http.StatusOK, items)
}
