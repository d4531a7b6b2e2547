package service

import "guideline-tutor-go/internal/model"

// DifficultyProfile 描述某一难度等级下病例的叙事复杂度。
type DifficultyProfile struct {
	Level       int
	Label       string
	StepCount   int
	Description string
}

// 五档难度的固定画像，病例生成必须遵守对应的步骤数。
var difficultyProfiles = map[int]DifficultyProfile{
	1: {Level: 1, Label: "beginner", StepCount: 3,
		Description: "A straightforward single-problem presentation in an otherwise healthy patient. Classic textbook findings, no comorbidities, one clear management pathway."},
	2: {Level: 2, Label: "advanced beginner", StepCount: 3,
		Description: "A common presentation with one relevant comorbidity or mildly atypical finding. The main diagnosis is still evident but management requires one adjustment."},
	3: {Level: 3, Label: "intermediate", StepCount: 4,
		Description: "A presentation with two or three interacting comorbidities. Findings partially overlap between plausible diagnoses and management involves genuine trade-offs."},
	4: {Level: 4, Label: "advanced", StepCount: 5,
		Description: "A complex multi-morbid patient with atypical findings, competing priorities and at least one red-herring detail. Several management pathways look defensible."},
	5: {Level: 5, Label: "expert", StepCount: 6,
		Description: "A diagnostically ambiguous, unstable patient with dense comorbidities, conflicting data and time pressure. Requires weighing guideline recommendations against contraindications."},
}

// ProfileFor 返回某一等级的难度画像，越界时取最近的边界。
func ProfileFor(level int) DifficultyProfile {
	return difficultyProfiles[clampDifficulty(level)]
}

// NextDifficulty 根据最近的成绩历史对当前难度做滞回调节。
// 取最近 5 条记录的平均分：>0.8 升一级（封顶 5），<0.5 降一级（保底 1），否则不变。
// history 按时间从旧到新排列；历史为空时难度不变。
// 给定相同输入结果完全确定，这只是一个滞回控制器，不是学习模型。
func NextDifficulty(current int, history []model.PerformanceRecord) int {
	current = clampDifficulty(current)
	if len(history) == 0 {
		return current
	}

	recent := history
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	sum := 0.0
	for _, r := range recent {
		sum += r.Score
	}
	mean := sum / float64(len(recent))

	switch {
	case mean > 0.8:
		return clampDifficulty(current + 1)
	case mean < 0.5:
		return clampDifficulty(current - 1)
	default:
		return current
	}
}

func clampDifficulty(level int) int {
	if level < 1 {
		return 1
	}
	if level > 5 {
		return 5
	}
	return level
}
