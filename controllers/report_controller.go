package controllers

import (
	"net/http"
	"strconv"
	"time"

	"Gin_postgres_redis_invent_tool/app"

	"github.com/gin-gonic/gin"
)

type ReportController struct{ *Srv }

func NewReportController(s *Srv) *ReportController { return &ReportController{Srv: s} }

// 库存汇总：全部临时聚合，不存冗余计数
func (rp *ReportController) StockSummary(c *gin.Context) {
	rows, err := rp.Repo.StockSummary(c.Request.Context(), app.ScopeFrom(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"stock": rows})
}

const pendingCountTTL = 30 * time.Second

// 侧边栏角标：30 秒 Redis 缓存兜一下仪表盘轮询
func (rp *ReportController) PendingCount(c *gin.Context) {
	scope := app.ScopeFrom(c)
	key := "invent:pending_count:all"
	if !scope.All {
		key = "invent:pending_count:" + scope.BranchID
	}

	if v, err := rp.A.RDB.Get(c.Request.Context(), key).Result(); err == nil {
		if n, perr := strconv.ParseInt(v, 10, 64); perr == nil {
			c.JSON(http.StatusOK, app.H{"pending": n, "cached": true})
			return
		}
	}

	n, err := rp.Repo.PendingRequestCount(c.Request.Context(), scope)
	if err != nil {
		writeErr(c, err)
		return
	}
	_ = rp.A.RDB.Set(c.Request.Context(), key, strconv.FormatInt(n, 10), pendingCountTTL).Err()
	c.JSON(http.StatusOK, app.H{"pending": n})
}

// 用户管理（管理员）

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

func (uc *UserController) ListUsers(c *gin.Context) {
	res, err := uc.Repo.ListUsers(c.Request.Context(), c.Query("q"),
		atoiDefault(c.Query("page"), 1), atoiDefault(c.Query("size"), 20))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (uc *UserController) GetUser(c *gin.Context) {
	u, err := uc.Repo.FindUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := uc.Repo.DeleteUserByID(c.Request.Context(), id); err != nil {
		writeErr(c, err)
		return
	}
	// 同时撤销全部会话
	_ = uc.AppSessions().RevokeAllForUser(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
