package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rexrel213/music-store-finally/internal/dto"
	"github.com/rexrel213/music-store-finally/internal/service"
)

// AdminHandler serves the back-office listings and create endpoints. Every
// route behind it is wrapped in AdminOnly.
type AdminHandler struct {
	productService *service.ProductService
	catalogService *service.CatalogService
	orderService   *service.OrderService
	reviewService  *service.ReviewService
	supplyService  *service.SupplyService
	staticDir      string
}

func NewAdminHandler(
	productService *service.ProductService,
	catalogService *service.CatalogService,
	orderService *service.OrderService,
	reviewService *service.ReviewService,
	supplyService *service.SupplyService,
	staticDir string,
) *AdminHandler {
	return &AdminHandler{
		productService: productService,
		catalogService: catalogService,
		orderService:   orderService,
		reviewService:  reviewService,
		supplyService:  supplyService,
		staticDir:      staticDir,
	}
}

func bindListRequest(c *gin.Context) (dto.AdminListRequest, bool) {
	var req dto.AdminListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}
	return req, true
}

func (h *AdminHandler) ListProducts(c *gin.Context) {
	req, ok := bindListRequest(c)
	if !ok {
		return
	}

	resp, err := h.productService.ListAdmin(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateProduct accepts multipart form data so the product image can be
// uploaded together with its fields.
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	price, err := decimal.NewFromString(c.PostForm("price"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return
	}
	brandID, err := uuid.Parse(c.PostForm("brand_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid brand ID"})
		return
	}
	typeID, err := uuid.Parse(c.PostForm("instrument_type_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid instrument type ID"})
		return
	}
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	if err := h.catalogService.ValidateProductRefs(c.Request.Context(), brandID, typeID); err != nil {
		switch {
		case errors.Is(err, service.ErrBrandNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "brand not found"})
		case errors.Is(err, service.ErrInstrumentTypeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "instrument type not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	in := service.CreateProductInput{
		Title:            title,
		Description:      c.PostForm("description"),
		Price:            price,
		BrandID:          brandID,
		InstrumentTypeID: typeID,
	}

	if file, err := c.FormFile("file"); err == nil {
		path, err := h.saveUpload(c, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		in.ImagePath = path
	}

	resp, err := h.productService.Create(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AdminHandler) AddProductImages(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "files are required"})
		return
	}

	paths := make([]string, 0, len(files))
	for _, file := range files {
		path, err := h.saveUpload(c, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		paths = append(paths, path)
	}

	count, err := h.productService.AddImages(c.Request.Context(), id, paths)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"uploaded": count})
}

func (h *AdminHandler) ListBrands(c *gin.Context) {
	req, ok := bindListRequest(c)
	if !ok {
		return
	}

	resp, err := h.catalogService.ListBrands(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) CreateBrand(c *gin.Context) {
	var req dto.CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.catalogService.CreateBrand(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AdminHandler) ListCategories(c *gin.Context) {
	req, ok := bindListRequest(c)
	if !ok {
		return
	}

	resp, err := h.catalogService.ListCategories(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.catalogService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AdminHandler) ListInstrumentTypes(c *gin.Context) {
	req, ok := bindListRequest(c)
	if !ok {
		return
	}

	resp, err := h.catalogService.ListInstrumentTypes(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) CreateInstrumentType(c *gin.Context) {
	var req dto.CreateInstrumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.catalogService.CreateInstrumentType(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AdminHandler) ListComments(c *gin.Context) {
	req, ok := bindListRequest(c)
	if !ok {
		return
	}

	resp, err := h.reviewService.ListCommentsAdmin(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	req, ok := bindListRequest(c)
	if !ok {
		return
	}

	resp, err := h.orderService.ListAdmin(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ListOrderItems(c *gin.Context) {
	req, ok := bindListRequest(c)
	if !ok {
		return
	}

	resp, err := h.orderService.ListItemsAdmin(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) GetOrderItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order item ID"})
		return
	}

	resp, err := h.orderService.GetItemAdmin(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrOrderItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) GetRating(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rating ID"})
		return
	}

	resp, err := h.reviewService.GetRating(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRatingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "rating not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ListSuppliers(c *gin.Context) {
	req, ok := bindListRequest(c)
	if !ok {
		return
	}

	resp, err := h.supplyService.ListSuppliers(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) GetSupplier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supplier ID"})
		return
	}

	resp, err := h.supplyService.GetSupplier(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSupplierNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "supplier not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) CreateSupplier(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.supplyService.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrSupplierExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "supplier already registered"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AdminHandler) ListSupplies(c *gin.Context) {
	req, ok := bindListRequest(c)
	if !ok {
		return
	}

	resp, err := h.supplyService.ListSupplies(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ListSupplyItems(c *gin.Context) {
	req, ok := bindListRequest(c)
	if !ok {
		return
	}

	resp, err := h.supplyService.ListSupplyItems(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) SalesReport(c *gin.Context) {
	resp, err := h.orderService.SalesReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// saveUpload writes the uploaded file under static/uploads with a random name
// and returns the path relative to the static dir.
func (h *AdminHandler) saveUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	name := uuid.New().String() + filepath.Ext(file.Filename)
	rel := filepath.Join("uploads", name)
	if err := c.SaveUploadedFile(file, filepath.Join(h.staticDir, rel)); err != nil {
		return "", err
	}
	return rel, nil
}
