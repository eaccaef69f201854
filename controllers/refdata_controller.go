package controllers

import (
	"net/http"

	"Gin_postgres_redis_invent_tool/app"
	"Gin_postgres_redis_invent_tool/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 参考数据（branch / OEM / client）的最小 CRUD

type RefDataController struct{ *Srv }

func NewRefDataController(s *Srv) *RefDataController { return &RefDataController{Srv: s} }

func (rd *RefDataController) CreateBranch(c *gin.Context) {
	var in struct {
		Name    string `json:"name" binding:"required"`
		Country string `json:"country"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	b := &models.Branch{ID: uuid.NewString(), Name: in.Name, Country: in.Country, Address: in.Address}
	if err := rd.Repo.CreateBranch(c.Request.Context(), b); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (rd *RefDataController) ListBranches(c *gin.Context) {
	bs, err := rd.Repo.ListBranches(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"branches": bs})
}

func (rd *RefDataController) CreateOEM(c *gin.Context) {
	var in struct {
		Name          string `json:"name" binding:"required"`
		ContactPerson string `json:"contactPerson"`
		PhoneEmail    string `json:"phoneEmail"`
		Address       string `json:"address"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	o := &models.OEM{
		ID: uuid.NewString(), Name: in.Name,
		ContactPerson: in.ContactPerson, PhoneEmail: in.PhoneEmail, Address: in.Address,
	}
	if err := rd.Repo.CreateOEM(c.Request.Context(), o); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (rd *RefDataController) ListOEMs(c *gin.Context) {
	oems, err := rd.Repo.ListOEMs(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"oems": oems})
}

func (rd *RefDataController) CreateClient(c *gin.Context) {
	var in struct {
		Name    string `json:"name" binding:"required"`
		PhoneNo string `json:"phoneNo"`
		Email   string `json:"email"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	cl := &models.Client{
		ID: uuid.NewString(), Name: in.Name,
		PhoneNo: in.PhoneNo, Email: in.Email, Address: in.Address,
	}
	if err := rd.Repo.CreateClient(c.Request.Context(), cl); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

func (rd *RefDataController) ListClients(c *gin.Context) {
	cs, err := rd.Repo.ListClients(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"clients": cs})
}
