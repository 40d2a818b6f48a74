package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/board-collab-api/internal/auth"
	"github.com/yukikurage/board-collab-api/internal/constants"
	"github.com/yukikurage/board-collab-api/internal/metrics"
	"github.com/yukikurage/board-collab-api/internal/middleware"
	"github.com/yukikurage/board-collab-api/internal/services"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth       *AuthHandler
	Admin      *AdminHandler
	Workspace  *WorkspaceHandler
	Board      *BoardHandler
	Content    *ContentHandler
	Invitation *InvitationHandler
	Member     *MemberHandler
}

// RouterOptions carries the shared infrastructure the router needs.
type RouterOptions struct {
	SessionStore   sessions.Store
	Tokens         *auth.TokenManager
	Policy         *services.AccessPolicy
	AllowedOrigins []string
	Log            zerolog.Logger
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(h Handlers, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(opts.Log))
	r.Use(metrics.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(sessions.Sessions(constants.SessionCookieName, opts.SessionStore))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Board API is running",
		})
	})
	r.GET("/metrics", metrics.Handler())

	requireAuth := middleware.RequireAuth(opts.Tokens)
	boardAccess := middleware.RequireBoardAccess(opts.Policy)
	boardAdmin := middleware.RequireBoardAdmin(opts.Policy)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", h.Auth.Register)
			authRoutes.POST("/login", h.Auth.Login)
			authRoutes.POST("/logout", h.Auth.Logout)
			authRoutes.POST("/forgot-password", h.Auth.ForgotPassword)
			authRoutes.POST("/reset-password", h.Auth.ResetPassword)
			authRoutes.GET("/me", requireAuth, h.Auth.GetCurrentUser)
		}

		admin := api.Group("/admin")
		admin.Use(requireAuth)
		{
			admin.GET("/users", h.Admin.ListUsers)
			admin.PATCH("/users/:id/role", h.Admin.ChangeRole)
		}

		workspaces := api.Group("/workspaces")
		workspaces.Use(requireAuth)
		{
			workspaces.POST("", h.Workspace.CreateWorkspace)
			workspaces.GET("", h.Workspace.ListWorkspaces)
			workspaces.GET("/:id", h.Workspace.GetWorkspace)
			workspaces.PATCH("/:id", h.Workspace.UpdateWorkspace)
			workspaces.DELETE("/:id", h.Workspace.DeleteWorkspace)
		}

		boards := api.Group("/boards")
		boards.Use(requireAuth)
		{
			boards.POST("", h.Board.CreateBoard)
			boards.GET("", h.Board.ListBoards)
			boards.GET("/:id", boardAccess, h.Board.GetBoard)
			boards.PATCH("/:id", boardAdmin, h.Board.UpdateBoard)
			boards.DELETE("/:id", h.Board.DeleteBoard)
			boards.GET("/:id/activity", boardAdmin, h.Board.GetActivity)
			boards.POST("/:id/duplicate", h.Board.DuplicateBoard)
			boards.POST("/:id/copy", h.Board.CopyBoard)

			boards.GET("/:id/lists", boardAccess, h.Content.GetLists)
			boards.POST("/:id/lists", boardAccess, h.Content.CreateList)

			boards.POST("/:id/invitations", h.Invitation.IssueInvitation)
			boards.GET("/:id/invitations", boardAdmin, h.Invitation.ListBoardInvitations)

			boards.GET("/:id/members", boardAccess, h.Member.ListMembers)
			boards.POST("/:id/members", h.Member.AddMember)
			boards.PATCH("/:id/members/:user_id", h.Member.UpdateMemberRole)
			boards.DELETE("/:id/members/:user_id", h.Member.RemoveMember)
			boards.POST("/:id/leave", h.Member.LeaveBoard)
		}

		lists := api.Group("/lists")
		lists.Use(requireAuth)
		{
			lists.PATCH("/:id", h.Content.UpdateList)
			lists.DELETE("/:id", h.Content.DeleteList)
			lists.POST("/:id/cards", h.Content.CreateCard)
		}

		cards := api.Group("/cards")
		cards.Use(requireAuth)
		{
			cards.PATCH("/:id", h.Content.UpdateCard)
			cards.DELETE("/:id", h.Content.DeleteCard)
			cards.PATCH("/:id/move", h.Content.MoveCard)
			cards.GET("/:id/members", h.Content.ListCardMembers)
			cards.POST("/:id/members", h.Content.AddCardMember)
			cards.DELETE("/:id/members/:user_id", h.Content.RemoveCardMember)
		}

		// Resolving by token is public so the invitee can look before signing up
		api.GET("/invitations/token/:token", h.Invitation.ResolveInvitation)

		invitations := api.Group("/invitations")
		invitations.Use(requireAuth)
		{
			invitations.GET("", h.Invitation.ListMyInvitations)
			invitations.POST("/accept", h.Invitation.AcceptInvitation)
			invitations.POST("/decline", h.Invitation.DeclineInvitation)
			invitations.DELETE("/:id", h.Invitation.CancelInvitation)
		}
	}

	return r
}
