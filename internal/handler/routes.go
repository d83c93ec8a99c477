package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/maganghub/maganghub-api/internal/middleware"
	"github.com/maganghub/maganghub-api/internal/models"
	"github.com/maganghub/maganghub-api/internal/service"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	Application  *ApplicationHandler
	Group        *GroupHandler
	Transfer     *TransferHandler
	Leave        *LeaveHandler
	Issue        *IssueHandler
	Realization  *RealizationHandler
	Reference    *ReferenceHandler
	Notification *NotificationHandler
	Files        *FileHandler
	Metrics      *MetricsHandler
}

// RegisterRoutes mounts the full API surface under prefix. Route-level guards
// only gate the coarse role; ownership and hat-per-link checks live in the
// services, which see the claims.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)
	r.GET("/files/:token", h.Files.Download)

	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWT(auth))

	authed.POST("/auth/logout", h.Auth.Logout)
	authed.GET("/auth/me", h.Auth.Me)

	authed.GET("/notifications/stream", h.Notification.Stream)

	apps := authed.Group("/applications")
	{
		apps.POST("", middleware.RequireRoles(models.RoleSiswa), h.Application.Submit)
		apps.GET("", h.Application.List)
		apps.GET("/:id", h.Application.Get)
		apps.GET("/:id/letter", h.Application.Letter)
		apps.POST("/:id/decision", middleware.RequireHats(models.HatKaprog), h.Application.Decide)
		apps.POST("/:id/complete", middleware.RequireHats(models.HatKaprog, models.HatKoordinator), h.Application.Complete)
	}

	groups := authed.Group("/groups", middleware.RequireRoles(models.RoleSiswa))
	{
		groups.POST("", h.Group.Create)
		groups.GET("/mine", h.Group.Mine)
		groups.GET("/members/search", h.Group.SearchMembers)
		groups.GET("/:id", h.Group.Get)
		groups.POST("/:id/respond", h.Group.Respond)
		groups.PUT("/:id/members", h.Group.UpdateMembers)
		groups.POST("/:id/submit", h.Group.Submit)
		groups.POST("/:id/withdraw", h.Group.Withdraw)
		groups.DELETE("/:id", h.Group.Delete)
	}

	transfers := authed.Group("/transfers")
	{
		transfers.POST("", middleware.RequireRoles(models.RoleSiswa), h.Transfer.Create)
		transfers.GET("", h.Transfer.List)
		transfers.GET("/:id", h.Transfer.Get)
		transfers.GET("/:id/document", h.Transfer.Document)
		transfers.POST("/:id/decision", middleware.RequireRoles(models.RoleGuru, models.RoleAdmin), h.Transfer.Decide)
	}

	leaves := authed.Group("/leaves")
	{
		leaves.POST("", middleware.RequireRoles(models.RoleSiswa), h.Leave.Create)
		leaves.GET("", h.Leave.List)
		leaves.PUT("/:id", middleware.RequireRoles(models.RoleSiswa), h.Leave.Update)
		leaves.DELETE("/:id", middleware.RequireRoles(models.RoleSiswa), h.Leave.Delete)
		leaves.POST("/:id/decision", middleware.RequireHats(models.HatPembimbing), h.Leave.Decide)
	}

	issues := authed.Group("/issues")
	{
		issues.POST("", middleware.RequireHats(models.HatPembimbing), h.Issue.Create)
		issues.GET("", h.Issue.List)
		issues.GET("/:id", h.Issue.Get)
		issues.PUT("/:id", middleware.RequireHats(models.HatPembimbing), h.Issue.Update)
	}

	realizations := authed.Group("/realizations", middleware.RequireRoles(models.RoleGuru, models.RoleAdmin))
	{
		realizations.POST("/photos", middleware.RequireHats(models.HatPembimbing), h.Realization.UploadPhotos)
		realizations.POST("", middleware.RequireHats(models.HatPembimbing), h.Realization.Create)
		realizations.GET("", h.Realization.List)
		realizations.GET("/:id", h.Realization.Get)
		realizations.PUT("/:id/photos", middleware.RequireHats(models.HatPembimbing), h.Realization.UpdatePhotos)
	}

	authed.GET("/kelas", h.Reference.ListKelas)
	authed.GET("/jurusan", h.Reference.ListJurusan)
	authed.GET("/industri", h.Reference.ListIndustri)
	authed.GET("/tahun-ajaran", h.Reference.ListTahunAjaran)
	authed.GET("/kegiatan", h.Reference.ListKegiatan)

	admin := authed.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/siswa", h.Reference.ListSiswa)
		admin.POST("/siswa", h.Reference.UpsertSiswa)
		admin.PUT("/siswa/:id", h.Reference.UpsertSiswa)
		admin.DELETE("/siswa/:id", h.Reference.DeactivateSiswa)

		admin.GET("/guru", h.Reference.ListGuru)
		admin.POST("/guru", h.Reference.UpsertGuru)
		admin.PUT("/guru/:id", h.Reference.UpsertGuru)
		admin.DELETE("/guru/:id", h.Reference.DeactivateGuru)

		admin.POST("/kelas", h.Reference.UpsertKelas)
		admin.PUT("/kelas/:id", h.Reference.UpsertKelas)
		admin.DELETE("/kelas/:id", h.Reference.DeleteKelas)

		admin.POST("/jurusan", h.Reference.UpsertJurusan)
		admin.PUT("/jurusan/:id", h.Reference.UpsertJurusan)
		admin.DELETE("/jurusan/:id", h.Reference.DeleteJurusan)

		admin.POST("/industri", h.Reference.UpsertIndustri)
		admin.PUT("/industri/:id", h.Reference.UpsertIndustri)
		admin.DELETE("/industri/:id", h.Reference.DeleteIndustri)

		admin.POST("/tahun-ajaran", h.Reference.UpsertTahunAjaran)
		admin.PUT("/tahun-ajaran/:id", h.Reference.UpsertTahunAjaran)
		admin.DELETE("/tahun-ajaran/:id", h.Reference.DeleteTahunAjaran)

		admin.POST("/kegiatan", h.Reference.CreateKegiatan)
	}
}
