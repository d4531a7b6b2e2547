package model

import (
	"errors"
	"fmt"
)

// CaseState 表示病例练习的显式状态。
type CaseState int

const (
	// CaseStatePending 表示当前步骤等待学习者提交决策。
	CaseStatePending CaseState = iota
	// CaseStateComplete 表示所有步骤均已提交并评估完毕。
	CaseStateComplete
)

var (
	// ErrCaseComplete 表示病例已完成，不再接受提交。
	ErrCaseComplete = errors.New("case is already complete")
	// ErrStepOutOfOrder 表示提交的步骤编号与当前待决步骤不符（不允许跳步）。
	ErrStepOutOfOrder = errors.New("step submitted out of order")
)

// stepOutcome 记录一步的最终决策与评估。门禁未通过时允许重新提交，后提交者生效。
type stepOutcome struct {
	decision   StepDecision
	evaluation StepEvaluation
}

// CaseProgress 是病例练习的显式状态机。
// 状态序列：Pending(0) → ... → Pending(n-1) → Complete。
// 只有评估返回 canProceed 时才推进到下一步。
// 病例进度由 HTTP 客户端持有（/evaluate-decision 本身无状态），
// 本类型供前端同构逻辑或内嵌调用方使用，服务端不落库。
type CaseProgress struct {
	c           *AdaptiveCase
	currentStep int // 0-indexed
	outcomes    map[int]stepOutcome
	state       CaseState
}

// NewCaseProgress 为给定病例创建进度跟踪。
func NewCaseProgress(c *AdaptiveCase) (*CaseProgress, error) {
	if c == nil || len(c.Steps) == 0 {
		return nil, errors.New("case has no steps")
	}
	return &CaseProgress{
		c:        c,
		outcomes: make(map[int]stepOutcome, len(c.Steps)),
		state:    CaseStatePending,
	}, nil
}

// State 返回当前状态。
func (p *CaseProgress) State() CaseState {
	return p.state
}

// CurrentStep 返回当前待决步骤的下标（0-indexed）。完成后返回最后一步的下标。
func (p *CaseProgress) CurrentStep() int {
	return p.currentStep
}

// Submit 记录当前步骤的决策与评估，并按 canProceed 门禁推进状态机。
// decision.StepNumber 采用 1-indexed，与 CaseStep.StepNumber 一致。
func (p *CaseProgress) Submit(decision StepDecision, evaluation StepEvaluation) error {
	if p.state == CaseStateComplete {
		return ErrCaseComplete
	}
	if decision.StepNumber != p.currentStep+1 {
		return fmt.Errorf("%w: got step %d, expected step %d", ErrStepOutOfOrder, decision.StepNumber, p.currentStep+1)
	}

	p.outcomes[p.currentStep] = stepOutcome{decision: decision, evaluation: evaluation}

	if !evaluation.CanProceed {
		// 门禁未通过：停留在当前步骤，是否允许重交由调用方决定
		return nil
	}
	if p.currentStep == len(p.c.Steps)-1 {
		p.state = CaseStateComplete
		return nil
	}
	p.currentStep++
	return nil
}

// AggregateScore 返回已评估步骤分数的算术平均值。
func (p *CaseProgress) AggregateScore() float64 {
	if len(p.outcomes) == 0 {
		return 0
	}
	sum := 0.0
	for _, o := range p.outcomes {
		sum += o.evaluation.Score
	}
	return sum / float64(len(p.outcomes))
}

// Summary 在完成后返回病例自带的标准路径与核心学习点。
func (p *CaseProgress) Summary() (correctApproach string, keyLearningPoints []string, err error) {
	if p.state != CaseStateComplete {
		return "", nil, errors.New("case is not complete yet")
	}
	return p.c.CorrectApproach, p.c.KeyLearningPoints, nil
}
