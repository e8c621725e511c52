package config

type WorkerKeyStruct struct {
	PersistQuizResultsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistQuizResultsQueue: "persist_quiz_results_queue",
}
