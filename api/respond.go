package api

import (
	"errors"
	"time"

	"github.com/MixinNetwork/registry/nft"
	"github.com/MixinNetwork/registry/storage"
	"github.com/gin-gonic/gin"
)

type Message struct {
	Code           int         `json:"code"`
	Message        string      `json:"message"`
	ProcessingTime int64       `json:"processingTime"`
	Data           interface{} `json:"data"`
}

const (
	CodeSuccess      = 0
	CodeInvalidParam = 40000
	CodeNotFound     = 40400
	CodeRejected     = 42200
	CodeServerError  = 50000
)

const MsgSuccess = "success"

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Message{
		Code:           CodeSuccess,
		Message:        MsgSuccess,
		ProcessingTime: getProcessingTime(c),
		Data:           data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(200, Message{
		Code:           code,
		Message:        message,
		ProcessingTime: getProcessingTime(c),
	})
}

func InvalidParam(c *gin.Context, message string) {
	Error(c, CodeInvalidParam, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, CodeNotFound, message)
}

// Failure maps a contract or store error to its response code. Store errors
// are reported as they are.
func Failure(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, nft.ErrApprovalNotFound):
		NotFound(c, err.Error())
	case nft.IsRejection(err):
		Error(c, CodeRejected, nft.ErrorTag(err)+": "+err.Error())
	default:
		Error(c, CodeServerError, err.Error())
	}
}

func getProcessingTime(c *gin.Context) int64 {
	if startTime, exists := c.Get("start_time"); exists {
		if t, ok := startTime.(time.Time); ok {
			return time.Since(t).Milliseconds()
		}
	}
	return 0
}

func TimingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("start_time", time.Now())
		c.Next()
	}
}
