package app

import (
	"context"
	"fmt"
	"os"
	"testing"

	"jobboard_chat_service/internal/chat/domain"

	"github.com/cucumber/godog"
)

// messagingWorld 每個 scenario 一份
type messagingWorld struct {
	env       *testEnv
	lastErr   error
	broadcast domain.BroadcastResult
}

func identityOf(memberID string) domain.Identity {
	switch memberID {
	case "B":
		return domain.Identity{MemberID: memberID, Role: "employer"}
	case "op":
		return domain.Identity{MemberID: memberID, Role: "operator"}
	}
	return domain.Identity{MemberID: memberID, Role: "applicant"}
}

func (w *messagingWorld) applicationExists(appID, applicantID, employerID, jobPostID string) error {
	w.env.directory.add(domain.Application{ID: appID, JobPostID: jobPostID, ApplicantID: applicantID, EmployerID: employerID})
	return nil
}

func (w *messagingWorld) statusChanged(appID, status string) error {
	app, err := w.env.directory.FindApplication(context.Background(), appID)
	if err != nil {
		return err
	}
	app.Status = status
	w.env.directory.add(*app)
	return w.env.registry.ApplyApplicationStatus(context.Background(), appID, status)
}

func (w *messagingWorld) sendMessage(memberID, convID, content string) error {
	_, w.lastErr = w.env.messages.Append(context.Background(), identityOf(memberID), convID, "", content)
	return nil
}

func (w *messagingWorld) readPage(memberID, convID string, page int) error {
	_, w.lastErr = w.env.history.GetHistory(context.Background(), identityOf(memberID), convID, page, 20)
	return nil
}

func (w *messagingWorld) pageShouldContain(convID string, page, n int) error {
	result, err := w.env.messages.Page(context.Background(), convID, page, 20)
	if err != nil {
		return err
	}
	if len(result.Messages) != n {
		return fmt.Errorf("expected %d messages, got %d", n, len(result.Messages))
	}
	return nil
}

func (w *messagingWorld) unreadShouldBe(memberID, convID string, n int) error {
	count, err := w.env.unread.UnreadCount(context.Background(), convID, memberID)
	if err != nil {
		return err
	}
	if count != int64(n) {
		return fmt.Errorf("expected unread %d, got %d", n, count)
	}
	return nil
}

func (w *messagingWorld) shouldFailWith(code string) error {
	if got := domain.ErrorCode(w.lastErr); got != code {
		return fmt.Errorf("expected error %q, got %q (%v)", code, got, w.lastErr)
	}
	return nil
}

func (w *messagingWorld) broadcastToApplicants(memberID, content, jobPostID string) error {
	var err error
	w.broadcast, err = w.env.broadcast.BroadcastToApplicants(context.Background(), identityOf(memberID), jobPostID, content)
	return err
}

func (w *messagingWorld) broadcastShouldBe(sent, failed int) error {
	if w.broadcast.Sent != sent || w.broadcast.Failed != failed {
		return fmt.Errorf("expected sent=%d failed=%d, got %+v", sent, failed, w.broadcast)
	}
	return nil
}

// InitializeMessagingScenario 註冊 Gherkin 與 Step Definition 的對應
func InitializeMessagingScenario(s *godog.ScenarioContext) {
	w := &messagingWorld{}
	s.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		*w = messagingWorld{env: newTestEnv()}
		return ctx, nil
	})

	s.Step(`^應徵 "([^"]*)" 由 "([^"]*)" 投遞給雇主 "([^"]*)" 的職缺 "([^"]*)"$`, w.applicationExists)
	s.Step(`^應徵 "([^"]*)" 狀態變更為 "([^"]*)"$`, w.statusChanged)
	s.Step(`^"([^"]*)" 在 "([^"]*)" 發送訊息 "([^"]*)"$`, w.sendMessage)
	s.Step(`^"([^"]*)" 讀取 "([^"]*)" 第 (\d+) 頁$`, w.readPage)
	s.Step(`^"([^"]*)" 第 (\d+) 頁應包含 (\d+) 則訊息$`, w.pageShouldContain)
	s.Step(`^"([^"]*)" 在 "([^"]*)" 的未讀數為 (\d+)$`, w.unreadShouldBe)
	s.Step(`^應收到錯誤 "([^"]*)"$`, w.shouldFailWith)
	s.Step(`^"([^"]*)" 群發 "([^"]*)" 給職缺 "([^"]*)" 的應徵者$`, w.broadcastToApplicants)
	s.Step(`^群發成功 (\d+) 筆 失敗 (\d+) 筆$`, w.broadcastShouldBe)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeMessagingScenario,
		Options: &godog.Options{
			Paths:    []string{"./features"}, // 指向 feature 檔相對路徑
			Format:   "pretty",
			Output:   os.Stdout,
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
