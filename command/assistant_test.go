package command

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssistant_Greeting_Matches(t *testing.T) {
	req := require.New(t)
	h := NewAssistantHandler("@assistant", DefaultRules())

	res := h.Execute("你好")

	qa := res.(AssistantQA)
	req.Equal("你好", qa.Question)
	req.Equal("你好！我是川小农AI助手，很高兴为你服务！", qa.Answer)
}

func TestAssistant_First_Match_Wins(t *testing.T) {
	req := require.New(t)
	rules := []Rule{
		NewRule(`campus`, "first"),
		NewRule(`campus location`, "second"),
	}
	h := NewAssistantHandler("@assistant", rules)

	// Both rules match; rule order decides, not specificity
	qa := h.Execute("where is the campus location").(AssistantQA)
	req.Equal("first", qa.Answer)
}

func TestAssistant_Match_Is_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	h := NewAssistantHandler("@assistant", DefaultRules())

	qa := h.Execute("HELLO there").(AssistantQA)
	req.Equal("你好！我是川小农AI助手，很高兴为你服务！", qa.Answer)
}

func TestAssistant_Fallback_Language_Follows_Question(t *testing.T) {
	req := require.New(t)
	h := NewAssistantHandler("@assistant", nil)

	zh := h.Execute("宇宙的尽头是什么地方").(AssistantQA)
	req.Contains(zh.Answer, "抱歉")

	en := h.Execute("what lies beyond the edge of the universe").(AssistantQA)
	req.Contains(en.Answer, "Sorry")
}

func TestAssistant_Empty_Question_Rejected(t *testing.T) {
	req := require.New(t)
	h := NewAssistantHandler("@assistant", DefaultRules())

	err := h.Validate("   ")

	req.Error(err)
	req.Contains(err.Error(), "usage: @assistant")
}
