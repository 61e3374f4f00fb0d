package command

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Rule maps a question pattern to a canned answer. Matching is
// case-insensitive and positional in the question.
type Rule struct {
	Pattern *regexp.Regexp
	Answer  string
}

// NewRule compiles a case-insensitive pattern. Panics on a bad pattern;
// the rule table is static host configuration, not user input.
func NewRule(pattern, answer string) Rule {
	return Rule{Pattern: regexp.MustCompile(`(?i)` + pattern), Answer: answer}
}

// AssistantHandler answers "@assistant <question>" from an ordered rule
// table. The first matching rule wins; when nothing matches, a fixed
// default answer is returned in the language of the question.
type AssistantHandler struct {
	token      string
	rules      []Rule
	fallbackZH string
	fallbackEN string
}

func NewAssistantHandler(token string, rules []Rule) AssistantHandler {
	return AssistantHandler{
		token:      token,
		rules:      rules,
		fallbackZH: "抱歉，我不太理解这个问题。你可以输入\"帮助\"查看我能回答的问题类型。",
		fallbackEN: "Sorry, I do not understand that question yet. Ask me for \"help\" to see what I can answer.",
	}
}

func (h AssistantHandler) Token() string { return h.token }

func (h AssistantHandler) Validate(args string) error {
	if strings.TrimSpace(args) == "" {
		return fmt.Errorf("usage: %s <question>", h.token)
	}
	return nil
}

func (h AssistantHandler) Execute(args string) Result {
	question := strings.TrimSpace(args)
	return AssistantQA{Question: question, Answer: h.answer(question)}
}

// answer walks the rule table in order and falls back to a default in
// the detected language of the question.
func (h AssistantHandler) answer(question string) string {
	for _, rule := range h.rules {
		if rule.Pattern.MatchString(question) {
			return rule.Answer
		}
	}

	info := whatlanggo.Detect(question)
	if info.Lang == whatlanggo.Cmn {
		return h.fallbackZH
	}
	return h.fallbackEN
}

// DefaultRules is the assistant knowledge base carried over from the
// campus deployment. Order matters: earlier rules shadow later ones.
func DefaultRules() []Rule {
	return []Rule{
		NewRule(`你好|hello|hi|嗨`, "你好！我是川小农AI助手，很高兴为你服务！"),
		NewRule(`你是谁|who are you`, "我是川小农AI助手，一个简单但实用的聊天机器人。"),
		NewRule(`帮助|help`, "我可以回答简单的问题。你可以问我：你好、你是谁、四川农业大学在哪、再见等。"),
		NewRule(`四川农业大学|川农`, "四川农业大学有三个校区：雅安校区位于雅安市雨城区新康路46号；成都校区位于成都市温江区惠民路211号；都江堰校区位于都江堰市建设路288号。"),
		NewRule(`雅安校区`, "雅安校区位于四川省雅安市雨城区新康路46号。"),
		NewRule(`成都校区`, "成都校区位于四川省成都市温江区惠民路211号。"),
		NewRule(`都江堰校区`, "都江堰校区位于四川省成都市都江堰市建设路288号。"),
		NewRule(`天气|weather`, "抱歉，我暂时无法获取天气信息，但你可以使用天气预报应用查看。"),
		NewRule(`谢谢|thank`, "不客气！有什么问题随时问我。"),
		NewRule(`再见|bye`, "再见！希望能再次为你服务！"),
	}
}

// DefaultHandlers wires the standard command set, including the Chinese
// aliases older campus clients still send.
func DefaultHandlers() []Handler {
	rules := DefaultRules()
	return []Handler{
		NewMovieHandler("@movie"),
		NewMovieHandler("@电影"),
		NewAssistantHandler("@assistant", rules),
		NewAssistantHandler("@川小农", rules),
	}
}
