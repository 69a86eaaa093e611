package models

import "github.com/gofiber/fiber/v2"

// Envelope is the standard API response wrapper.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK writes a 200 response with the given payload.
func OK(c *fiber.Ctx, data any) error {
	return c.JSON(Envelope{Success: true, Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data})
}

// Message writes a 200 response carrying only an informational message.
func Message(c *fiber.Ctx, msg string) error {
	return c.JSON(Envelope{Success: true, Message: msg})
}

// PaginatedResponse wraps a page of items with pagination metadata.
type PaginatedResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}
