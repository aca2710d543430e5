package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"whisperwall/backend/internal/config"
)

// ErrUpstream 上游建议服务调用失败
var ErrUpstream = errors.New("suggestion upstream unavailable")

// DefaultQuestions 上游不可用时的兜底问题列表
var DefaultQuestions = []string{
	"What's a hobby you've recently started?",
	"If you could have dinner with any historical figure, who would it be?",
	"What's a simple thing that makes you happy?",
}

const suggestPrompt = "Create a list of three open-ended and engaging questions formatted as a single string. " +
	"Each question should be separated by '||'. These questions are for an anonymous social messaging platform " +
	"and should be suitable for a diverse audience. Avoid personal or sensitive topics. For example: " +
	"'What's a hobby you've recently started?||If you could have dinner with any historical figure, who would " +
	"it be?||What's a simple thing that makes you happy?'."

// SuggestService 调用上游文本生成接口，产出可直接发送的留言建议。
type SuggestService struct {
	cfg    config.SuggestConfig
	client *http.Client
	logger *zap.Logger
}

// NewSuggestService 创建留言建议服务。
func NewSuggestService(cfg config.SuggestConfig, logger *zap.Logger) *SuggestService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SuggestService{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// generateRequest 上游生成接口的请求体
type generateRequest struct {
	Model             string   `json:"model"`
	Prompt            string   `json:"prompt"`
	MaxTokens         int      `json:"max_tokens"`
	Temperature       float64  `json:"temperature"`
	K                 int      `json:"k"`
	StopSequences     []string `json:"stop_sequences"`
	ReturnLikelihoods string   `json:"return_likelihoods"`
}

// generateResponse 上游生成接口的响应体
type generateResponse struct {
	Generations []struct {
		Text string `json:"text"`
	} `json:"generations"`
}

// Suggest 获取一批留言建议问题。
//
// topic 非空时把提示词限定到该主题。返回上游生成的 `||` 分隔问题列表；
// 上游失败或返回空内容时返回 ErrUpstream，调用方可回退到 DefaultQuestions。
// 每次调用只尝试一次，不做重试。
func (s *SuggestService) Suggest(ctx context.Context, topic string) ([]string, error) {
	raw, err := s.generate(ctx, topic)
	if err != nil {
		s.logger.Warn("suggestion upstream call failed", zap.Error(err))
		return nil, ErrUpstream
	}

	questions := ParseQuestions(raw)
	if len(questions) == 0 {
		return nil, ErrUpstream
	}
	return questions, nil
}

// generate 调用上游生成接口并返回原始文本
func (s *SuggestService) generate(ctx context.Context, topic string) (string, error) {
	prompt := suggestPrompt
	if topic = strings.TrimSpace(topic); topic != "" {
		prompt += " The questions should relate to the topic: " + topic + "."
	}

	body, err := json.Marshal(generateRequest{
		Model:             s.cfg.Model,
		Prompt:            prompt,
		MaxTokens:         100,
		Temperature:       0.8,
		K:                 0,
		StopSequences:     []string{},
		ReturnLikelihoods: "NONE",
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	if len(result.Generations) == 0 {
		return "", fmt.Errorf("upstream returned no generations")
	}
	return result.Generations[0].Text, nil
}

// ParseQuestions 解析 `||` 分隔的问题串，丢弃空白片段
func ParseQuestions(raw string) []string {
	parts := strings.Split(raw, "||")
	questions := make([]string, 0, len(parts))
	for _, p := range parts {
		if q := strings.TrimSpace(p); q != "" {
			questions = append(questions, q)
		}
	}
	return questions
}
