package services

import (
	"log/slog"

	"github.com/nexlearn/campus-rewards/internal/cache"
	"github.com/nexlearn/campus-rewards/internal/events"
	"github.com/nexlearn/campus-rewards/internal/repositories"
	"github.com/nexlearn/campus-rewards/internal/utils"
)

// ServiceManager wires the service layer together. Construction order
// matters: rankings invalidate through the cache, the ledger invalidates
// rankings, and the quiz credits through the ledger.
type ServiceManager struct {
	Users         UserService
	Tasks         TaskService
	Ledger        LedgerService
	Quiz          QuizService
	Vouchers      VoucherService
	Rankings      RankingService
	Notifications NotificationService
	Exports       ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *utils.Validator,
	publisher events.Publisher,
	cacheService cache.CacheService,
) *ServiceManager {
	rankings := NewRankingService(repo, cacheService, logger)
	ledger := NewLedgerService(repo, logger, validator, publisher, rankings)

	return &ServiceManager{
		Users:         NewUserService(repo, logger, validator),
		Tasks:         NewTaskService(repo, logger, validator),
		Ledger:        ledger,
		Quiz:          NewQuizService(repo, ledger, logger, publisher),
		Vouchers:      NewVoucherService(repo, logger, validator),
		Rankings:      rankings,
		Notifications: NewNotificationService(repo, logger),
		Exports:       NewExportService(repo, logger),
	}
}
