package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/database"
	"storefront/services"
)

type ProductController struct {
	Base
	catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService, b Base) *ProductController {
	return &ProductController{Base: b, catalog: catalog}
}

// List serves the public catalog, filtered by ?category, ?search and ?featured.
func (pc *ProductController) List(c *gin.Context) {
	filter := database.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "featured must be true or false"})
			return
		}
		filter.Featured = &featured
	}

	ctx, cancel := pc.ctx(c)
	defer cancel()

	products, err := pc.catalog.List(ctx, filter)
	if err != nil {
		pc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (pc *ProductController) Get(c *gin.Context) {
	ctx, cancel := pc.ctx(c)
	defer cancel()

	product, err := pc.catalog.Get(ctx, c.Param("id"))
	if err != nil {
		pc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}
