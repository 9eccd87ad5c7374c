package handlers

import (
	"tutormatch_backend/internal/services"
)

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler     *AuthHandler
	UserHandler     *UserHandler
	TutorHandler    *TutorHandler
	FavoriteHandler *FavoriteHandler
	BookingHandler  *BookingHandler
	ProjectHandler  *ProjectHandler
	MatchingHandler *MatchingHandler
}

func NewAppHandlers(base *BaseHandler, sc *services.ServiceContainer, maxUpload int64) *AppHandlers {
	return &AppHandlers{
		AuthHandler:     NewAuthHandler(base, sc.AuthService),
		UserHandler:     NewUserHandler(base, sc.UserService, maxUpload),
		TutorHandler:    NewTutorHandler(base, sc.TutorService, sc.ExportService),
		FavoriteHandler: NewFavoriteHandler(base, sc.FavoriteService),
		BookingHandler:  NewBookingHandler(base, sc.BookingService),
		ProjectHandler:  NewProjectHandler(base, sc.ProjectService),
		MatchingHandler: NewMatchingHandler(base, sc.MatchingService),
	}
}
