package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-access-api/internal/domain"
	"user-access-api/internal/service"
)

type AdminHandler struct {
	users *service.UserService
	log   *zap.Logger
}

func NewAdminHandler(users *service.UserService, l *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, log: l}
}

type createReq struct {
	Name     string `json:"name"     binding:"required,min=2,max=50"`
	Email    string `json:"email"    binding:"required,email,max=191"`
	Password string `json:"password" binding:"required,min=6,max=72,maxbytes=72"`
	Role     string `json:"role"     binding:"omitempty,oneof=user admin"`
}

type listQ struct {
	Offset int    `form:"offset,default=0"`
	Limit  int    `form:"limit,default=20"`
	Q      string `form:"q"` // 按 email/name 模糊搜
}

// Mount 挂在已校验 admin 的分组下
func (h *AdminHandler) Mount(admin *gin.RouterGroup) {
	// --- POST /admin/v1/users  创建用户 ---
	RegisterAction(admin, h.log, Action[createReq, *domain.User]{
		Method:  http.MethodPost,
		Path:    "/users",
		Binder:  BindJSON,
		Status:  http.StatusCreated,
		Message: "User created successfully",
		Key:     "user",
		Handler: func(c *gin.Context, in *createReq) (*domain.User, error) {
			return h.users.Create(c.Request.Context(), service.NewUser{
				Name: in.Name, Email: in.Email, Password: in.Password, Role: in.Role,
			})
		},
	})

	// --- GET /admin/v1/users  用户列表 ---
	RegisterAction(admin, h.log, Action[listQ, gin.H]{
		Method:  http.MethodGet,
		Path:    "/users",
		Binder:  BindQuery,
		Message: "Users retrieved successfully",
		Handler: func(c *gin.Context, in *listQ) (gin.H, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			if in.Offset < 0 {
				in.Offset = 0
			}
			users, total, err := h.users.Search(c.Request.Context(), in.Q, in.Offset, in.Limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"users": users, "count": len(users), "total": total}, nil
		},
	})
}
