package controller

import (
	"edulytics_backend/internal/repository"
	"edulytics_backend/internal/service"
	"edulytics_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ProfileController 学习风格画像的查询接口
type ProfileController struct {
	Classifier  *service.ClassifierService
	ProfileRepo *repository.ProfileRepository
}

func NewProfileController(classifier *service.ClassifierService, profileRepo *repository.ProfileRepository) *ProfileController {
	return &ProfileController{Classifier: classifier, ProfileRepo: profileRepo}
}

// @Summary 获取当前学习风格画像
// @Tags 学习风格
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/learning-style/profile [get]
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.ProfileRepo.Current(user.StudentID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, profile)
}

// @Summary 学习风格历史演变
// @Tags 学习风格
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/learning-style/evolution [get]
func (c *ProfileController) GetEvolution(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	points, err := c.Classifier.StyleEvolution(user.StudentID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, points)
}

// @Summary 与同班同年级群体的对比
// @Tags 学习风格
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/learning-style/peer-comparison [get]
func (c *ProfileController) GetPeerComparison(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	comparison, err := c.Classifier.PeerComparison(user.StudentID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, comparison)
}
