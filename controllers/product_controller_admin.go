package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/database"
	"storefront/models"
)

func (pc *ProductController) Create(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		pc.badRequest(c, err)
		return
	}

	ctx, cancel := pc.ctx(c)
	defer cancel()

	created, err := pc.catalog.Create(ctx, product)
	if err != nil {
		pc.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": created})
}

func (pc *ProductController) Update(c *gin.Context) {
	var update models.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		pc.badRequest(c, err)
		return
	}

	ctx, cancel := pc.ctx(c)
	defer cancel()

	updated, err := pc.catalog.Update(ctx, c.Param("id"), update)
	if err != nil {
		pc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": updated})
}

func (pc *ProductController) Delete(c *gin.Context) {
	ctx, cancel := pc.ctx(c)
	defer cancel()

	if err := pc.catalog.Delete(ctx, c.Param("id")); err != nil {
		pc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// ListAll is the admin view of the catalog; it takes no filters.
func (pc *ProductController) ListAll(c *gin.Context) {
	ctx, cancel := pc.ctx(c)
	defer cancel()

	products, err := pc.catalog.List(ctx, database.ProductFilter{})
	if err != nil {
		pc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
