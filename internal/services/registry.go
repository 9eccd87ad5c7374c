package services

import (
	"tutormatch_backend/internal/auth"
	"tutormatch_backend/internal/repositories"
	"tutormatch_backend/internal/storage"
	"tutormatch_backend/internal/wechat"
)

// ServiceContainer holds every application service.
type ServiceContainer struct {
	AuthService     AuthService
	UserService     UserService
	TutorService    TutorService
	ExportService   ExportService
	FavoriteService FavoriteService
	BookingService  BookingService
	ProjectService  ProjectService
	MatchingService MatchingService
}

// Dependencies are the shared collaborators services are built from.
type Dependencies struct {
	Tokens        *auth.TokenManager
	Wechat        wechat.Authenticator
	Storage       storage.Storage
	Upload        UploadOptions
	ExportMaxRows int
}

func NewServiceContainer(deps Dependencies) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	tutorRepo := repositories.NewTutorRepository()
	favoriteRepo := repositories.NewFavoriteRepository()
	bookingRepo := repositories.NewBookingRepository()
	projectRepo := repositories.NewProjectRepository()
	historyRepo := repositories.NewMatchHistoryRepository()

	return &ServiceContainer{
		AuthService:     NewAuthService(userRepo, deps.Tokens, deps.Wechat),
		UserService:     NewUserService(userRepo, deps.Storage, deps.Upload),
		TutorService:    NewTutorService(tutorRepo, favoriteRepo),
		ExportService:   NewExportService(tutorRepo, deps.ExportMaxRows),
		FavoriteService: NewFavoriteService(favoriteRepo, tutorRepo),
		BookingService:  NewBookingService(bookingRepo, userRepo, tutorRepo),
		ProjectService:  NewProjectService(projectRepo),
		MatchingService: NewMatchingService(tutorRepo, historyRepo),
	}
}
