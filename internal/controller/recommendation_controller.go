package controller

import (
	"edulytics_backend/internal/service"
	"edulytics_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type RecommendationController struct {
	RecommendationService *service.RecommendationService
}

func NewRecommendationController(recommendationService *service.RecommendationService) *RecommendationController {
	return &RecommendationController{RecommendationService: recommendationService}
}

// @Summary 获取个性化内容推荐
// @Tags 推荐
// @Produce json
// @Security BearerAuth
// @Param limit query int false "返回条数，默认 10"
// @Success 200 {object} util.Response
// @Router /api/recommendations [get]
func (c *RecommendationController) GetRecommendations(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > 50 {
		util.BadRequest(ctx, "limit must be between 1 and 50")
		return
	}

	recommended, err := c.RecommendationService.Generate(ctx.Request.Context(), user.StudentID, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, recommended)
}

// @Summary 标记推荐内容已查看
// @Tags 推荐
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/recommendations/{contentId}/viewed [post]
func (c *RecommendationController) MarkViewed(ctx *gin.Context) {
	c.markInteraction(ctx, c.RecommendationService.MarkViewed)
}

// @Summary 标记推荐内容已完成
// @Tags 推荐
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/recommendations/{contentId}/completed [post]
func (c *RecommendationController) MarkCompleted(ctx *gin.Context) {
	c.markInteraction(ctx, c.RecommendationService.MarkCompleted)
}

func (c *RecommendationController) markInteraction(ctx *gin.Context, mark func(studentID, contentID uint) error) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	contentID, err := strconv.ParseUint(ctx.Param("contentId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid content id")
		return
	}

	if err := mark(user.StudentID, uint(contentID)); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// @Summary 推荐效果统计
// @Tags 推荐
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/recommendations/effectiveness [get]
func (c *RecommendationController) GetEffectiveness(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	metrics, err := c.RecommendationService.Effectiveness(user.StudentID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, metrics)
}
