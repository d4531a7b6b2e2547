package model

// CaseStep 是结构化病例中的一个决策步骤。
type CaseStep struct {
	StepNumber             int      `json:"stepNumber"`
	Title                  string   `json:"title"`
	Content                string   `json:"content"`
	DecisionPrompt         string   `json:"decisionPrompt"`
	ExpectedConsiderations []string `json:"expectedConsiderations"`
}

// AdaptiveCase 是一次难度自适应的多步病例练习。
// 不变量：Steps 严格有序，必须按序完成，不允许跳步。
type AdaptiveCase struct {
	DifficultyLevel   int        `json:"difficultyLevel"` // 1..5
	Steps             []CaseStep `json:"steps"`
	CorrectApproach   string     `json:"correctApproach"`
	KeyLearningPoints []string   `json:"keyLearningPoints"`
}

// StepDecision 是学习者对某一步骤提交的自由文本决策，提交后不可变。
type StepDecision struct {
	StepNumber int    `json:"stepNumber"`
	Decision   string `json:"decision"`
	Reasoning  string `json:"reasoning"`
}

// StepEvaluation 是评估器对单个 StepDecision 的结构化裁定。
type StepEvaluation struct {
	Score         float64  `json:"score"` // 0.0..1.0
	IsAppropriate bool     `json:"isAppropriate"`
	Feedback      string   `json:"feedback"`
	Strengths     []string `json:"strengths"`
	Gaps          []string `json:"gaps"`
	CanProceed    bool     `json:"canProceed"`
}
