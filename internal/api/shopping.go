package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

type ShoppingHandler struct {
	authService     service.IAuthService
	shoppingService service.IShoppingService
}

func NewShoppingHandler(authService service.IAuthService, shoppingService service.IShoppingService) *ShoppingHandler {
	return &ShoppingHandler{authService: authService, shoppingService: shoppingService}
}

func (h *ShoppingHandler) RegisterRoutes(router *gin.RouterGroup) {
	lists := router.Group("/shopping-lists", middleware.AuthMiddleware(h.authService))
	{
		lists.GET("", h.ListLists)
		lists.POST("", h.CreateList)
		lists.POST("/generate", h.GenerateList)
		lists.GET("/:id", h.GetList)
		lists.PUT("/:id", h.RenameList)
		lists.DELETE("/:id", h.DeleteList)
		lists.POST("/:id/items", h.AddItem)
		lists.PATCH("/:id/items/:item_id", h.UpdateItem)
		lists.DELETE("/:id/items/:item_id", h.DeleteItem)
	}
}

func (h *ShoppingHandler) ListLists(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var q types.PageQuery
	if !bindQuery(c, &q) {
		return
	}

	lists, page, err := h.shoppingService.ListLists(c.Request.Context(), userID, q)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]types.ShoppingListResponse, len(lists))
	for i := range lists {
		out[i] = types.NewShoppingListResponse(&lists[i])
	}
	c.JSON(http.StatusOK, types.ShoppingListListResponse{ShoppingLists: out, Pagination: page})
}

func (h *ShoppingHandler) CreateList(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.ShoppingListRequest
	if !bindJSON(c, &req) {
		return
	}

	list, err := h.shoppingService.CreateList(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewShoppingListResponse(list))
}

// GenerateList builds a list from the week's meal plan. An existing list
// for the week is a 409 carrying its id unless replace is set.
func (h *ShoppingHandler) GenerateList(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.GenerateShoppingListRequest
	if !bindJSON(c, &req) {
		return
	}

	list, err := h.shoppingService.GenerateList(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewShoppingListResponse(list))
}

func (h *ShoppingHandler) GetList(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.shoppingService.GetList(c.Request.Context(), userID, listID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewShoppingListResponse(list))
}

func (h *ShoppingHandler) RenameList(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.RenameShoppingListRequest
	if !bindJSON(c, &req) {
		return
	}

	list, err := h.shoppingService.RenameList(c.Request.Context(), userID, listID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewShoppingListResponse(list))
}

func (h *ShoppingHandler) DeleteList(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.shoppingService.DeleteList(c.Request.Context(), userID, listID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ShoppingHandler) AddItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.ShoppingItemInput
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.shoppingService.AddItem(c.Request.Context(), userID, listID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem returns the whole list so the client can redraw in order
func (h *ShoppingHandler) UpdateItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}
	var req types.UpdateShoppingItemRequest
	if !bindJSON(c, &req) {
		return
	}

	list, err := h.shoppingService.UpdateItem(c.Request.Context(), userID, listID, itemID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewShoppingListResponse(list))
}

func (h *ShoppingHandler) DeleteItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	if err := h.shoppingService.DeleteItem(c.Request.Context(), userID, listID, itemID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
