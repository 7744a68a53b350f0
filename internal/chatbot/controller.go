package chatbot

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	chatService Asker
	logger      *slog.Logger
}

func NewChatController(chatService Asker, logger *slog.Logger) *ChatController {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ChatController{chatService: chatService, logger: logger}
}

func (cc *ChatController) QueryByChat(ctx *gin.Context) {
	var request QueryRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	answer, err := cc.chatService.Ask(ctx.Request.Context(), request.Question)
	if err != nil {
		cc.logger.Warn("question failed", slog.String("question", request.Question), slog.Any("error", err))
		body := ErrorResponse{Error: err.Error()}
		if answer != nil {
			body.Query = answer.Query
		}
		ctx.JSON(statusFor(err), body)
		return
	}

	ctx.JSON(http.StatusOK, QueryResponse{
		Query:   answer.Query,
		Columns: answer.Result.Columns,
		Rows:    answer.Result.Rows,
	})
}

func (cc *ChatController) RegisterRoutes(router gin.IRouter) {
	router.POST("/v1/query", cc.QueryByChat)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrRemote):
		return http.StatusBadGateway
	case errors.Is(err, ErrQuery):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
