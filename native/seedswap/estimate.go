package seedswap

// EstimateDistributeAll predicts what DistributeAll would release without
// changing state. It is not admin gated.
func (e *Engine) EstimateDistributeAll(percentage, timeUnits uint64) (*DistributionPlan, error) {
	params, err := e.estimatePreamble(percentage)
	if err != nil {
		return nil, err
	}
	sel, err := e.selectWindow(params, percentage, timeUnits)
	if err != nil {
		return nil, err
	}
	return e.finishEstimate(params, sel)
}

// EstimateDistributeBatch predicts what DistributeBatch would release for ids.
func (e *Engine) EstimateDistributeBatch(percentage uint64, ids []uint64) (*DistributionPlan, error) {
	params, err := e.estimatePreamble(percentage)
	if err != nil {
		return nil, err
	}
	sel, err := e.selectIDs(params, percentage, ids, estimateIDErrors)
	if err != nil {
		return nil, err
	}
	return e.finishEstimate(params, sel)
}

func (e *Engine) estimatePreamble(percentage uint64) (*Params, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	params, err := e.Params()
	if err != nil {
		return nil, err
	}
	if err := e.checkDistributable(params, percentage); err != nil {
		return nil, err
	}
	return params, nil
}

func (e *Engine) finishEstimate(params *Params, sel *selection) (*DistributionPlan, error) {
	plan := sel.finish(params)
	ok, err := e.vaultCovers(params, plan.TotalDistributingAmount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEstimateNotEnoughBalance
	}
	return plan, nil
}
