package taskqueue

// QueueFor returns the queue a given task routes to, per the explicit
// per-capability routing in §4.3, §4.5 and §4.6. Callers should not
// hardcode queue names at call sites; route through this table so the
// mapping stays in one place.
func QueueFor(task TaskName) QueueName {
	switch task {
	case TaskSummarizeSession, TaskReflect, TaskExtractFacts, TaskExtractPreferences, TaskUpdateGoals, TaskExtractBatchKnowledge, TaskRunInsightAnalysis, TaskRunGraphEnrichment:
		return QueueCognition
	case TaskProcessDailyLife, TaskRunReverieCycle:
		return QueueCognition
	case TaskTriggerImmediate:
		return QueueSensory
	case TaskRunGossipDispatch:
		return QueueSocial
	default:
		return QueueAction
	}
}
