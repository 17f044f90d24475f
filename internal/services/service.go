package services

import (
	"multitunes/config"
	"multitunes/internal/database"
)

type Service struct {
	Transaction *TransactionService
	Deezer      *DeezerService
	Scheduler   *SchedulerService
}

func New(db database.DB, config config.Config) Service {
	return Service{
		Transaction: NewTransactionService(db),
		Deezer:      NewDeezerService(config.DeezerBaseURL),
		Scheduler:   NewSchedulerService(),
	}
}
