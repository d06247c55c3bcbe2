package controller

import (
	"edulytics_backend/internal/model"
	"edulytics_backend/internal/repository"
	"edulytics_backend/internal/service"
	"edulytics_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
	StudentRepo      *repository.StudentRepository
}

func NewAnalyticsController(analyticsService *service.AnalyticsService, studentRepo *repository.StudentRepository) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService, StudentRepo: studentRepo}
}

// parseDateRange 解析 start/end 查询参数，缺省为最近 30 天
func parseDateRange(ctx *gin.Context) (time.Time, time.Time, bool) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if raw := ctx.Query("start"); raw != "" {
		parsed, err := time.Parse(model.DateString, raw)
		if err != nil {
			util.BadRequest(ctx, "start must be formatted as YYYY-MM-DD")
			return start, end, false
		}
		start = parsed
	}
	if raw := ctx.Query("end"); raw != "" {
		parsed, err := time.Parse(model.DateString, raw)
		if err != nil {
			util.BadRequest(ctx, "end must be formatted as YYYY-MM-DD")
			return start, end, false
		}
		end = parsed
	}
	if end.Before(start) {
		util.BadRequest(ctx, "end must not be before start")
		return start, end, false
	}
	return start, end, true
}

// @Summary 学生学习分析汇总
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Param start query string false "起始日期 YYYY-MM-DD"
// @Param end query string false "结束日期 YYYY-MM-DD"
// @Success 200 {object} util.Response
// @Router /api/analytics/summary [get]
func (c *AnalyticsController) GetSummary(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	start, end, ok := parseDateRange(ctx)
	if !ok {
		return
	}

	analytics, err := c.AnalyticsService.StudentAnalytics(user.StudentID, start, end)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, analytics)
}

// @Summary 重算某日的学习指标
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Param date query string false "日期 YYYY-MM-DD，默认今天"
// @Success 200 {object} util.Response
// @Router /api/analytics/recalculate [post]
func (c *AnalyticsController) Recalculate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	date := time.Now()
	if raw := ctx.Query("date"); raw != "" {
		parsed, err := time.Parse(model.DateString, raw)
		if err != nil {
			util.BadRequest(ctx, "date must be formatted as YYYY-MM-DD")
			return
		}
		date = parsed
	}

	if err := c.AnalyticsService.CalculateDailyAnalytics(user.StudentID, date); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	// 周一顺带滚上一周
	if date.Weekday() == time.Monday {
		weekStart := date.AddDate(0, 0, -7)
		if err := c.AnalyticsService.CalculateWeeklyAnalytics(user.StudentID, weekStart); err != nil {
			util.HandleServiceError(ctx, err)
			return
		}
	}

	util.Success(ctx, gin.H{"date": model.FormatDate(date)})
}

// @Summary 班级学习分析（教师）
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Param gradeLevel query string true "年级"
// @Param class query string true "班级"
// @Success 200 {object} util.Response
// @Router /api/analytics/class [get]
func (c *AnalyticsController) GetClassAnalytics(ctx *gin.Context) {
	gradeLevel := ctx.Query("gradeLevel")
	class := ctx.Query("class")
	if gradeLevel == "" || class == "" {
		util.BadRequest(ctx, "gradeLevel and class are required")
		return
	}

	start, end, ok := parseDateRange(ctx)
	if !ok {
		return
	}

	students, err := c.StudentRepo.FindByGradeAndClass(gradeLevel, class)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	ids := make([]uint, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}

	analytics, err := c.AnalyticsService.ClassAnalytics(ids, start, end)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, analytics)
}
