package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lltsaorg/thiha-shop-app/internal/logger"
	"github.com/lltsaorg/thiha-shop-app/internal/metrics"
)

const (
	queueKey  = "notifications"
	failedKey = "notifications:failed"
)

// Job is one queued admin notification.
type Job struct {
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Service queues admin notifications on a redis list and delivers them
// from a background worker. Delivery is best-effort by contract: the
// storefront transactions never see a notification failure.
type Service struct {
	redis      *redis.Client
	adminEmail string
	from       string
	fromName   string
	smtpHost   string
	smtpPort   string
	smtpUser   string
	smtpPass   string
}

func New(adminEmail, fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		adminEmail: adminEmail,
		from:       fromEmail,
		fromName:   fromName,
		smtpHost:   smtpHost,
		smtpPort:   smtpPort,
		smtpUser:   smtpUser,
		smtpPass:   smtpPass,
	}
}

// NotifyTopUpRequested informs admins that a customer asked for a
// credit. Errors are logged and swallowed.
func (s *Service) NotifyTopUpRequested(ctx context.Context, accountID int, amount int64) {
	subject := "New top-up request"
	body := fmt.Sprintf("Account %d requested a top-up of %d. Approve it in the admin console.", accountID, amount)

	if err := s.enqueue(ctx, subject, body); err != nil {
		logger.Errorf("Failed to queue top-up notification for account %d: %v", accountID, err)
		metrics.RecordNotification("failed")
		return
	}
	metrics.RecordNotification("queued")
}

func (s *Service) enqueue(ctx context.Context, subject, body string) error {
	job := Job{
		Subject: subject,
		Body:    body,
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		return err
	}

	logger.Infof("Notification queued: %s", subject)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to deliver notification %q: %v", job.Subject, err)

		if job.Tries < 3 {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying notification %q (attempt %d)", job.Subject, job.Tries+1)
		} else {
			logger.Errorf("Notification %q failed after 3 attempts", job.Subject)
			s.saveFailed(job, err)
		}
		return
	}

	logger.Infof("Notification delivered: %s", job.Subject)
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", s.adminEmail)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{s.adminEmail}, []byte(message))
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedKey, data)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}
