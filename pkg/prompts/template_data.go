package prompts

import (
	_ "embed"
)

// ModeScript はトピックから台本 (シーン列 JSON) を作るモードなのだ。
const ModeScript = "script"

// TemplateData は台本プロンプトのテンプレートに渡すデータ構造です。
type TemplateData struct {
	Topic                string
	CharacterDescription string
}

//go:embed script.md
var ScriptTemplate string

// allTemplates はモードとテンプレート文字列を紐づけるマップなのだ。
var allTemplates = map[string]string{
	ModeScript: ScriptTemplate,
}
