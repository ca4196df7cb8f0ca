// Package prompt builds the conversation text sent to backend models.
// All user-facing instructions are Japanese, matching the chat product;
// structural markers ([思考], JSON shapes) are contracts parsed by steps.
package prompt

import (
	"fmt"
	"strings"

	"github.com/polymind-ai/polymind/pkg/models"
)

// SummaryPrefix starts the synthetic system message that replaces the
// compressed history. The client renders it as a collapsed summary block.
const SummaryPrefix = "[以前の会話の要約]\n"

// Deep-thought format markers. Replies are parsed with these exact tags.
const (
	ThinkOpen   = "[思考]"
	ThinkClose  = "[/思考]"
	AnswerOpen  = "[最終回答]"
	ThoughtMiss = "(extraction failed)"
)

// SummarizeRequest asks the summariser model to compress the history that
// precedes the current user turn.
func SummarizeRequest() models.Message {
	return models.UserMessage(
		"ここまでの会話全体を、第三者視点の詳細な要約に圧縮してください。" +
			"システムプロンプトの意図・重要な事実・決定事項・未解決の論点を必ず保持してください。" +
			"要約本文のみを出力してください。")
}

// SummaryMessage wraps the produced summary into the synthetic system
// message that replaces the compressed history.
func SummaryMessage(summary string) models.Message {
	return models.SystemMessage(SummaryPrefix + summary)
}

// PlanSubtasks asks the planner for a strict JSON array of actionable
// subtask strings for the given question.
func PlanSubtasks(question string) models.Message {
	return models.UserMessage(fmt.Sprintf(
		"次の質問を解決するための具体的なサブタスクに分解してください。\n\n質問: %s\n\n"+
			"出力は JSON の文字列配列のみとしてください(例: [\"タスク1\", \"タスク2\"])。"+
			"説明文やコードフェンスは不要です。", question))
}

// Hypotheses asks the generator for exactly three distinct interpretations
// of the question, as a JSON string array.
func Hypotheses(question string) models.Message {
	return models.UserMessage(fmt.Sprintf(
		"次の質問について、意図の解釈として考えられる仮説をちょうど3つ挙げてください。\n\n質問: %s\n\n"+
			"出力は要素数3の JSON 文字列配列のみとしてください。説明文やコードフェンスは不要です。", question))
}

// ExpertRoles asks the role generator for count personas suited to the
// question. User-supplied role labels are passed through as hints.
func ExpertRoles(question string, count int, hints []string) models.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "次の質問に多角的に回答するため、専門家のペルソナを%d個生成してください。\n\n質問: %s\n",
		count, question)
	if len(hints) > 0 {
		fmt.Fprintf(&b, "\nユーザーが希望する役割のヒント: %s\n", strings.Join(hints, "、"))
	}
	b.WriteString("\n出力は JSON の文字列配列のみとしてください(各要素がペルソナの説明)。コードフェンスは不要です。")
	return models.UserMessage(b.String())
}

// ActAs builds the per-model system message assigning a persona.
func ActAs(persona string) models.Message {
	return models.SystemMessage(fmt.Sprintf(
		"あなたは「%s」として振る舞い、その専門性と視点から回答してください。", persona))
}

// DeepThoughtFormat is the trailing system instruction that forces the
// thought/answer structure parsed by the deep-thought step.
func DeepThoughtFormat() models.Message {
	return models.SystemMessage(
		"回答は必ず次の形式に従ってください。\n" +
			ThinkOpen + "ここに思考過程を書く" + ThinkClose + "\n" +
			AnswerOpen + "ここに最終回答を書く\n" +
			"この形式以外の出力をしないでください。")
}

// Critique asks a model to critique the drafts produced for the question.
func Critique(question string, drafts []models.ModelReply) models.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "次の質問に対して複数のモデルが回答案を作成しました。\n\n質問: %s\n\n", question)
	writeNumberedReplies(&b, "回答案", drafts, false)
	b.WriteString("\nそれぞれの回答案について、誤り・抜け・改善点を具体的に批評してください。")
	return models.UserMessage(b.String())
}

// RouterRequest asks the router for one strategic system instruction that
// should steer the expert team for this question.
func RouterRequest(question string) models.Message {
	return models.UserMessage(fmt.Sprintf(
		"次の質問に回答するチームへの戦略的な指示を1つ作成してください。\n\n質問: %s\n\n"+
			"回答の方針・重視すべき観点・避けるべき落とし穴を簡潔にまとめ、"+
			"システムプロンプトとしてそのまま使える指示文のみを出力してください。", question))
}

// Subtask builds the per-assignment prompt for one planned subtask.
// isHypothesis switches the framing from work item to interpretation.
func Subtask(question, subtask string, isHypothesis bool) models.Message {
	if isHypothesis {
		return models.UserMessage(fmt.Sprintf(
			"元の質問: %s\n\n次の解釈に基づいて回答を作成してください。\n\n解釈: %s", question, subtask))
	}
	return models.UserMessage(fmt.Sprintf(
		"元の質問: %s\n\n次のサブタスクを遂行し、その結果を報告してください。\n\nサブタスク: %s", question, subtask))
}

// EmotionAnalysis asks the analyser for a JSON object describing the
// emotional state of the question and the tone a reply should take.
func EmotionAnalysis(question string) models.Message {
	return models.UserMessage(fmt.Sprintf(
		"次の発言の感情を分析してください。\n\n発言: %s\n\n"+
			"出力は {\"emotion\": \"...\", \"tone\": \"...\"} 形式の JSON のみとしてください。"+
			"emotion は読み取れる感情、tone は返答に適した口調です。", question))
}

// IntegrateStandard builds the integration request from plain fan-out
// replies: the original question plus a numbered listing.
func IntegrateStandard(question string, replies []models.ModelReply) models.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "質問: %s\n\n複数のモデルの回答を統合し、最も正確で分かりやすい最終回答を作成してください。\n\n", question)
	writeNumberedReplies(&b, "回答", replies, false)
	b.WriteString("\n最終回答のみを出力してください。")
	return models.UserMessage(b.String())
}

// IntegrateDeepThought is IntegrateStandard with each reply's thought
// included alongside its answer.
func IntegrateDeepThought(question string, replies []models.ModelReply) models.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "質問: %s\n\n各モデルの思考過程と回答を踏まえ、最終回答を作成してください。\n\n", question)
	writeNumberedReplies(&b, "回答", replies, true)
	b.WriteString("\n最終回答のみを出力してください。")
	return models.UserMessage(b.String())
}

// IntegrateWithCritiques builds the final-editor request from drafts and
// their critiques.
func IntegrateWithCritiques(question string, drafts, critiques []models.ModelReply) models.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "質問: %s\n\n", question)
	writeNumberedReplies(&b, "回答案", drafts, false)
	b.WriteString("\n")
	writeNumberedReplies(&b, "批評", critiques, false)
	b.WriteString("\nあなたは最終編集者です。すべての批評を反映し、回答案を改善した最終回答のみを出力してください。")
	return models.UserMessage(b.String())
}

// IntegrateReport builds the manager/hypothesis integration request from
// (subtask, reply) pairs. Pairs beyond the replies' length are reported as
// unanswered.
func IntegrateReport(question string, subTasks []string, replies []models.ModelReply, isHypothesis bool) models.Message {
	var b strings.Builder
	if isHypothesis {
		fmt.Fprintf(&b, "質問: %s\n\n各解釈に対する回答の報告です。\n\n", question)
	} else {
		fmt.Fprintf(&b, "質問: %s\n\n各サブタスクの実行結果の報告です。\n\n", question)
	}
	for i, st := range subTasks {
		fmt.Fprintf(&b, "%d. 課題: %s\n", i+1, st)
		if i < len(replies) {
			fmt.Fprintf(&b, "   結果 (%s): %s\n", replies[i].Model, replies[i].Content)
		} else {
			b.WriteString("   結果: (未回答)\n")
		}
	}
	b.WriteString("\nこれらの報告を統合し、元の質問への最終回答のみを出力してください。")
	return models.UserMessage(b.String())
}

// IntegrateWithEmotion builds the rewrite request from the emotion
// analysis and the draft answers.
func IntegrateWithEmotion(question, analysis string, drafts []models.ModelReply) models.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "質問: %s\n\n感情分析の結果: %s\n\n", question, analysis)
	writeNumberedReplies(&b, "回答案", drafts, false)
	b.WriteString("\n分析された感情と口調に合わせて回答案を統合・リライトし、最終回答のみを出力してください。")
	return models.UserMessage(b.String())
}

func writeNumberedReplies(b *strings.Builder, label string, replies []models.ModelReply, withThought bool) {
	for i, r := range replies {
		fmt.Fprintf(b, "%s%d (%s):\n", label, i+1, r.Model)
		if withThought && r.Thought != "" {
			fmt.Fprintf(b, "思考過程: %s\n", r.Thought)
		}
		fmt.Fprintf(b, "%s\n\n", r.Content)
	}
}
