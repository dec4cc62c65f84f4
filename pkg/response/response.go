// Package response writes the JSON envelopes every endpoint answers with.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Body[T any] struct {
	Success bool `json:"success"`
	Count   *int `json:"count,omitempty"`
	Data    T    `json:"data"`
}

type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type TokenBody struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// Success writes {success: true, data}.
func Success[T any](c *gin.Context, status int, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, Body[T]{Success: true, Data: data})
}

// List writes {success: true, count, data}.
func List[T any](c *gin.Context, data []T) {
	if data == nil {
		data = []T{}
	}
	n := len(data)
	c.JSON(http.StatusOK, Body[[]T]{Success: true, Count: &n, Data: data})
}

// Token writes {success: true, token}.
func Token(c *gin.Context, status int, token string) {
	c.JSON(status, TokenBody{Success: true, Token: token})
}

// Error writes {success: false, error} and stops the handler chain.
func Error(c *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, ErrorBody{Success: false, Error: message})
}
