package controller

import (
	"edulytics_backend/internal/service"
	"edulytics_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type SurveyController struct {
	SurveyService *service.SurveyService
}

func NewSurveyController(surveyService *service.SurveyService) *SurveyController {
	return &SurveyController{SurveyService: surveyService}
}

// @Summary 获取当前启用的学习风格问卷
// @Tags 问卷
// @Produce json
// @Param language query string false "问卷语言，默认 id"
// @Success 200 {object} util.Response
// @Router /api/surveys/active [get]
func (c *SurveyController) GetActive(ctx *gin.Context) {
	language := ctx.DefaultQuery("language", "id")

	survey, err := c.SurveyService.ActiveSurvey(language)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, survey)
}

// @Summary 开始作答
// @Tags 问卷
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response
// @Router /api/surveys/{id}/responses [post]
func (c *SurveyController) StartResponse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	surveyID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid survey id")
		return
	}

	response, err := c.SurveyService.StartResponse(uint(surveyID), user.StudentID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, response)
}

type saveProgressRequest struct {
	Answers map[string]int `json:"answers" binding:"required"`
}

// @Summary 暂存作答进度
// @Tags 问卷
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/surveys/responses/{id} [put]
func (c *SurveyController) SaveProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	responseID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid response id")
		return
	}

	var req saveProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	response, err := c.SurveyService.SaveProgress(uint(responseID), user.StudentID, req.Answers)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, response)
}

type submitResponseRequest struct {
	Answers          map[string]int `json:"answers" binding:"required"`
	TimeSpentSeconds int            `json:"timeSpentSeconds"`
}

// @Summary 提交作答并触发学习风格分析
// @Tags 问卷
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/surveys/responses/{id}/submit [post]
func (c *SurveyController) SubmitResponse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	responseID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid response id")
		return
	}

	var req submitResponseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.SurveyService.SubmitResponse(ctx.Request.Context(), uint(responseID), user.StudentID, req.Answers, req.TimeSpentSeconds)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, profile)
}
