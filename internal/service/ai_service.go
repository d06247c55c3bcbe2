package service

import (
	"bytes"
	"context"
	"edulytics_backend/internal/config"
	"edulytics_backend/internal/model"
	"edulytics_backend/internal/util"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TextGenerator 屏蔽具体的 AI 供应商。分析与推荐服务只依赖本接口，
// 测试中以脚本化实现替代。
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AIService 对接 OpenAI chat-completions 兼容接口
type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *AIService) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []AIChatMessage{
		{
			Role:    "system",
			Content: "你是一个教育数据分析助手。只输出一个 JSON 对象，不要输出任何解释性文字。",
		},
		{
			Role:    "user",
			Content: prompt,
		},
	}

	reqBody := ChatCompletionRequest{
		Model:    s.config.Model,
		Messages: messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", &util.ExternalServiceError{Op: "ai.generate", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &util.ExternalServiceError{Op: "ai.generate", Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &util.ExternalServiceError{Op: "ai.generate", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &util.ExternalServiceError{
			Op:  "ai.generate",
			Err: fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body)),
		}
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &util.ExternalServiceError{Op: "ai.generate", Err: err}
	}
	if result.Error != nil {
		return "", &util.ExternalServiceError{Op: "ai.generate", Err: fmt.Errorf("AI API error: %s", result.Error.Message)}
	}
	if len(result.Choices) == 0 {
		return "", &util.ExternalServiceError{Op: "ai.generate", Err: fmt.Errorf("AI returned no choices")}
	}

	return result.Choices[0].Message.Content, nil
}

// BuildStyleAnalysisPrompt 构造学习风格分析提示词。要求模型返回与
// model.AIStyleAnalysis 字段一致的 JSON。
func BuildStyleAnalysisPrompt(student *model.Student, survey *model.LearningStyleSurvey, answers map[string]int) string {
	var sb strings.Builder
	sb.WriteString("Analisis gaya belajar siswa berdasarkan jawaban kuesioner VAK (skala Likert 1-5).\n\n")
	fmt.Fprintf(&sb, "Siswa: %s, kelas %s.\n\nJawaban:\n", student.Name, student.GradeLevel)
	for _, q := range survey.Questions {
		value, ok := answers[q.ID]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "- [%s] %s => %d\n", q.Category, q.Text, value)
	}
	sb.WriteString("\nBalas hanya dengan satu objek JSON dengan bentuk persis:\n")
	sb.WriteString(`{"visual_score": 0-100, "auditory_score": 0-100, "kinesthetic_score": 0-100, "dominant_style": "visual|auditory|kinesthetic|mixed", "confidence_score": 0-100, "reasoning": "...", "recommendations": ["..."]}`)
	return sb.String()
}

// BuildRecommendationPrompt 构造内容排序提示词。学生画像整体序列化
// 进提示词（风格分数、兴趣、薄弱与擅长学科都参与排序），要求模型返回
// 与 model.AIRecommendationResult 字段一致的 JSON。
func BuildRecommendationPrompt(profile *model.StudentAIProfile, candidates []model.Content) string {
	var sb strings.Builder
	sb.WriteString("Urutkan konten pembelajaran berikut untuk siswa ini.\n\nProfil siswa (JSON):\n")
	if data, err := json.Marshal(profile); err == nil {
		sb.Write(data)
		sb.WriteString("\n")
	}
	sb.WriteString("\nKandidat konten:\n")
	for _, c := range candidates {
		fmt.Fprintf(&sb, "- id=%d judul=%q mapel=%s tingkat=%s gaya=%s rating=%.1f\n",
			c.ID, c.Title, c.Subject, c.DifficultyLevel, c.TargetLearningStyle, c.Rating)
	}
	sb.WriteString("\nBalas hanya dengan satu objek JSON dengan bentuk persis:\n")
	sb.WriteString(`{"recommended_content": [{"content_id": <id>, "relevance_score": 0.0-1.0, "reason": "..."}], "study_strategies": ["..."], "learning_tips": ["..."]}`)
	return sb.String()
}

// ParseStyleAnalysis 从自由文本中提取并解析风格分析 JSON。三个分数
// 键必须全部出现，否则视为不可解析，由调用方回退确定性结果。
func ParseStyleAnalysis(text string) (*model.AIStyleAnalysis, bool) {
	raw, ok := util.ExtractJSONObject(text)
	if !ok {
		return nil, false
	}
	var keys struct {
		Visual      *float64 `json:"visual_score"`
		Auditory    *float64 `json:"auditory_score"`
		Kinesthetic *float64 `json:"kinesthetic_score"`
	}
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, false
	}
	if keys.Visual == nil || keys.Auditory == nil || keys.Kinesthetic == nil {
		return nil, false
	}
	var analysis model.AIStyleAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, false
	}
	return &analysis, true
}

// ParseRecommendationResult 从自由文本中提取并解析推荐排序 JSON
func ParseRecommendationResult(text string) (*model.AIRecommendationResult, bool) {
	raw, ok := util.ExtractJSONObject(text)
	if !ok {
		return nil, false
	}
	var result model.AIRecommendationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false
	}
	return &result, true
}
