package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-access-api/internal/domain"
	"user-access-api/internal/service"
	mdw "user-access-api/internal/transport/http/middleware"
)

type UserHandler struct {
	users *service.UserService
	log   *zap.Logger
}

func NewUserHandler(users *service.UserService, l *zap.Logger) *UserHandler {
	return &UserHandler{users: users, log: l}
}

// updateReq 部分更新，字段缺省即不改
type updateReq struct {
	Name     *string `json:"name"     binding:"omitempty,min=2,max=50"`
	Email    *string `json:"email"    binding:"omitempty,email,max=191"`
	Password *string `json:"password" binding:"omitempty,min=6,max=72,maxbytes=72"`
	Role     *string `json:"role"     binding:"omitempty,oneof=user admin"`
}

func (r updateReq) changes() domain.UserChanges {
	return domain.UserChanges{Name: r.Name, Email: r.Email, Password: r.Password, Role: r.Role}
}

// Mount 读接口公开，写接口需要登录
func (h *UserHandler) Mount(g *gin.RouterGroup) {
	authed := mdw.RequireAuth(h.log)

	RegisterAction(g, h.log, Action[struct{}, gin.H]{
		Method:  http.MethodGet,
		Path:    "/users",
		Binder:  BindNone,
		Message: "Users retrieved successfully",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			users, err := h.users.List(c.Request.Context())
			if err != nil {
				return nil, err
			}
			return gin.H{"users": users, "count": len(users)}, nil
		},
	})

	RegisterAction(g, h.log, Action[struct{}, *domain.User]{
		Method:  http.MethodGet,
		Path:    "/users/:id",
		Binder:  BindNone,
		Message: "User retrieved successfully",
		Key:     "user",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			return h.users.Get(c.Request.Context(), id)
		},
	})

	RegisterAction(g, h.log, Action[updateReq, *domain.User]{
		Method:  http.MethodPut,
		Path:    "/users/:id",
		Binder:  BindNone,
		Message: "User updated successfully",
		Key:     "user",
		Handler: func(c *gin.Context, in *updateReq) (*domain.User, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			if err := c.ShouldBindJSON(in); err != nil {
				return nil, err
			}
			ch := in.changes()
			if ch.Empty() {
				return nil, domainValidation("at least one of name, email, password, role is required")
			}
			if err := service.CanModifyUser(mdw.Actor(c), id, ch); err != nil {
				return nil, err
			}
			return h.users.Update(c.Request.Context(), id, ch)
		},
	}, authed)

	RegisterAction(g, h.log, Action[struct{}, *service.DeleteResult]{
		Method:  http.MethodDelete,
		Path:    "/users/:id",
		Binder:  BindNone,
		Message: "User deleted successfully",
		Key:     "result",
		Handler: func(c *gin.Context, _ *struct{}) (*service.DeleteResult, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			if err := service.CanModifyUser(mdw.Actor(c), id, domain.UserChanges{}); err != nil {
				return nil, err
			}
			return h.users.Delete(c.Request.Context(), id)
		},
	}, authed)
}
