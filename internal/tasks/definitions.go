package tasks

// DefineTasks registers all available tasks
func DefineTasks() {
	RegisterHandler(AlertDigestTask.TaskID(), AlertDigestTask.HandleExecution)
	RegisterHandler(SubscriptionSweepTask.TaskID(), SubscriptionSweepTask.HandleExecution)
}
