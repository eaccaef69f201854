package controllers

import (
	"net/http"

	"Gin_postgres_redis_invent_tool/app"
	"Gin_postgres_redis_invent_tool/db"
	"Gin_postgres_redis_invent_tool/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InventoryController struct{ *Srv }

func NewInventoryController(s *Srv) *InventoryController { return &InventoryController{Srv: s} }

// 管理：创建 product（设备型号）
func (ic *InventoryController) CreateProduct(c *gin.Context) {
	var in struct {
		Name        string           `json:"name" binding:"required"`
		Category    string           `json:"category"`
		Description string           `json:"description"`
		OEMID       *string          `json:"oemId"`
		BranchID    *string          `json:"branchId"`
		PriceUSD    *decimal.Decimal `json:"priceUsd"`
		PriceKSH    *decimal.Decimal `json:"priceKsh"`
		PriceTSH    *decimal.Decimal `json:"priceTsh"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	uid := app.UserID(c)
	p := &models.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		OEMID:       in.OEMID,
		BranchID:    in.BranchID,
		CreatedBy:   &uid,
	}
	if in.PriceUSD != nil {
		p.PriceUSD = *in.PriceUSD
	}
	if in.PriceKSH != nil {
		p.PriceKSH = *in.PriceKSH
	}
	if in.PriceTSH != nil {
		p.PriceTSH = *in.PriceTSH
	}
	if err := ic.Repo.CreateProduct(c.Request.Context(), p); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (ic *InventoryController) ListProducts(c *gin.Context) {
	ps, err := ic.Repo.ListProducts(c.Request.Context(), app.ScopeFrom(c), c.Query("q"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"products": ps})
}

func (ic *InventoryController) DeleteProduct(c *gin.Context) {
	if err := ic.Repo.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// 入库：JSON 批量登记 IMEI（文件解析在上游做）
func (ic *InventoryController) IntakeUnits(c *gin.Context) {
	var in struct {
		Units []db.UnitIntake `json:"units" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	res, err := ic.Repo.IntakeUnits(c.Request.Context(), c.Param("id"), in.Units)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// 店员选件用：该 product 当前可用的 unit 列表 + 即时可用数
func (ic *InventoryController) ListAvailableUnits(c *gin.Context) {
	productID := c.Param("id")
	us, err := ic.Repo.ListAvailableUnits(c.Request.Context(), productID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"units": us, "available": len(us)})
}

func (ic *InventoryController) ListUnits(c *gin.Context) {
	us, err := ic.Repo.ListUnits(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"units": us})
}
