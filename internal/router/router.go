package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/dhanadurga/backend/api/handler"
)

type Handlers struct {
	Auth       *apiHandler.AuthHandler
	Activity   *apiHandler.ActivityHandler
	Schedule   *apiHandler.ScheduleHandler
	Note       *apiHandler.NoteHandler
	Habit      *apiHandler.HabitHandler
	Credential *apiHandler.CredentialHandler
	Stats      *apiHandler.StatsHandler
	Assistant  *apiHandler.AssistantHandler
	Health     *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/forgot-password", handlers.Auth.ForgotPassword)
	r.POST("/api/v1/auth/reset-password", handlers.Auth.ResetPassword)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.GET("/api/v1/auth/me", authMiddleware(handlers.Auth.Me))
	r.POST("/api/v1/auth/update-password", authMiddleware(handlers.Auth.UpdatePassword))
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Activities, shared across every category partition
	r.GET("/api/v1/tasks", authMiddleware(handlers.Activity.List))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Activity.Create))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Activity.Get))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Activity.Update))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Activity.Delete))

	// Schedule queries
	r.GET("/api/v1/schedule/conflicts", authMiddleware(handlers.Schedule.CheckConflict))
	r.GET("/api/v1/schedule/free-slots", authMiddleware(handlers.Schedule.FreeSlots))

	// Notes
	r.GET("/api/v1/notes", authMiddleware(handlers.Note.List))
	r.POST("/api/v1/notes", authMiddleware(handlers.Note.Create))
	r.PUT("/api/v1/notes/{id}", authMiddleware(handlers.Note.Update))
	r.DELETE("/api/v1/notes/{id}", authMiddleware(handlers.Note.Delete))

	// Habits
	r.GET("/api/v1/habits", authMiddleware(handlers.Habit.List))
	r.POST("/api/v1/habits", authMiddleware(handlers.Habit.Create))
	r.POST("/api/v1/habits/{id}/toggle", authMiddleware(handlers.Habit.Toggle))
	r.PUT("/api/v1/habits/{id}", authMiddleware(handlers.Habit.Update))
	r.DELETE("/api/v1/habits/{id}", authMiddleware(handlers.Habit.Delete))

	// Credentials
	r.GET("/api/v1/credentials", authMiddleware(handlers.Credential.List))
	r.POST("/api/v1/credentials", authMiddleware(handlers.Credential.Create))
	r.PUT("/api/v1/credentials/{id}", authMiddleware(handlers.Credential.Update))
	r.DELETE("/api/v1/credentials/{id}", authMiddleware(handlers.Credential.Delete))

	// Stats
	r.GET("/api/v1/stats", authMiddleware(handlers.Stats.Summary))
	r.GET("/api/v1/stats/weekly", authMiddleware(handlers.Stats.Weekly))

	// Assistant
	r.POST("/api/v1/ai/chat", authMiddleware(handlers.Assistant.Chat))

	return r
}
