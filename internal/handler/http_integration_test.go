package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"crm-voice-server/internal/ai"
	"crm-voice-server/internal/handler"
	"crm-voice-server/internal/messaging"
	"crm-voice-server/internal/mocks"
	"crm-voice-server/internal/repository"
	"crm-voice-server/internal/service"
	"crm-voice-server/migrations"
	"crm-voice-server/pkg/migration"
)

const integrationJWTSecret = "integration-test-secret"

// IntegrationTestSuite runs the voice pipeline against real Postgres and
// RabbitMQ containers, with only the AI boundary mocked. Gated behind
// INTEGRATION_TESTS=1 because it needs a working Docker daemon.
type IntegrationTestSuite struct {
	suite.Suite
	pgContainer  *postgres.PostgresContainer
	rmqContainer *rabbitmq.RabbitMQContainer
	dbPool       *pgxpool.Pool
	rabbitConn   *amqp.Connection
	aiClient     *mocks.MockAIClient
	app          *gin.Engine
	reports      <-chan amqp.Delivery
}

func TestIntegrationSuite(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run container-backed tests")
	}
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("crm_voice_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err)
	s.pgContainer = pgContainer
	pgConnStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	rmqContainer, err := rabbitmq.Run(ctx,
		"rabbitmq:3-management-alpine",
		testcontainers.WithWaitStrategy(wait.ForLog("Server startup complete")),
	)
	require.NoError(s.T(), err)
	s.rmqContainer = rmqContainer
	rmqConnStr, err := rmqContainer.AmqpURL(ctx)
	require.NoError(s.T(), err)

	s.dbPool, err = pgxpool.New(ctx, pgConnStr)
	require.NoError(s.T(), err)

	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: ".",
		MigrationsFS:   migrations.Files(),
	}, s.dbPool)
	require.NoError(s.T(), migrator.Up(ctx))

	s.rabbitConn, err = amqp.Dial(rmqConnStr)
	require.NoError(s.T(), err)

	publisher, err := messaging.NewRabbitMQReportPublisher(s.rabbitConn)
	require.NoError(s.T(), err)

	// Bind a test queue to the fanout exchange to observe published reports.
	ch, err := s.rabbitConn.Channel()
	require.NoError(s.T(), err)
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(s.T(), err)
	require.NoError(s.T(), ch.QueueBind(q.Name, "", messaging.ExchangeVoiceReports, false, nil))
	s.reports, err = ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(s.T(), err)

	log := zap.NewNop()
	promptsDir := s.T().TempDir()
	for _, name := range []string{service.PromptPlanner, service.PromptCoach} {
		require.NoError(s.T(), os.WriteFile(filepath.Join(promptsDir, name+".md"), []byte("prompt "+name), 0o644))
	}

	leadRepo := repository.NewPgLeadRepository(s.dbPool, log)
	eventRepo := repository.NewPgCalendarEventRepository(s.dbPool, log)
	followUpRepo := repository.NewPgFollowUpRepository(s.dbPool, log)

	s.aiClient = &mocks.MockAIClient{}
	prompts := service.NewPromptProvider(promptsDir, log)
	planner := service.NewPlannerService(s.aiClient, prompts, log)
	executor := service.NewExecutorService(leadRepo, eventRepo, followUpRepo, mocks.NewMockContactCreator(s.T()), publisher, log)
	voiceService := service.NewVoiceService(s.aiClient, planner, executor, log)

	verifier, err := handler.NewJWTVerifier(integrationJWTSecret, log)
	require.NoError(s.T(), err)
	h := handler.NewVoiceHandler(voiceService, executor, leadRepo, eventRepo, followUpRepo, verifier, log)

	gin.SetMode(gin.TestMode)
	s.app = gin.New()
	h.RegisterRoutes(s.app)
}

func (s *IntegrationTestSuite) TearDownSuite() {
	ctx := context.Background()
	if s.rabbitConn != nil {
		_ = s.rabbitConn.Close()
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.rmqContainer != nil {
		_ = s.rmqContainer.Terminate(ctx)
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(ctx)
	}
}

func (s *IntegrationTestSuite) token(orgID string) string {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, handler.Claims{
		OrgID: orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := t.SignedString([]byte(integrationJWTSecret))
	require.NoError(s.T(), err)
	return signed
}

func (s *IntegrationTestSuite) postVoiceNote(orgID string, fields map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("audio", "note.ogg")
	require.NoError(s.T(), err)
	_, err = part.Write([]byte("fake-audio"))
	require.NoError(s.T(), err)
	for k, v := range fields {
		require.NoError(s.T(), w.WriteField(k, v))
	}
	require.NoError(s.T(), w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/voice/notes", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token(orgID))
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)
	return rec
}

func (s *IntegrationTestSuite) TestVoiceNotePersistsAndPublishesReport() {
	s.aiClient.On("Transcribe", mock.Anything, mock.Anything, "note.ogg").
		Return("zapisz jana kowalskiego i follow-up na piątek", nil).Once()
	s.aiClient.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{
			"actions": [
				{"type": "create_follow_up", "payload": {"relatedName": "Jan Kowalski", "dueDate": "2026-09-04", "followupType": "pozysk"}},
				{"type": "create_lead", "payload": {"name": "Jan Kowalski", "phone": "+48 601 234 567"}}
			]
		}`, ai.Usage{TotalTokens: 120}, nil).Once()

	rec := s.postVoiceNote("org-int-1", map[string]string{
		"auto_execute": "true",
		"now":          "2026-09-01T12:00:00Z",
	})
	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())

	var resp handler.VoiceNoteResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(s.T(), resp.Report)
	require.Len(s.T(), resp.Report.Leads, 1)
	require.Len(s.T(), resp.Report.FollowUps, 1)
	// The follow-up created later in the batch references the new lead row.
	require.Equal(s.T(), resp.Report.Leads[0].ID, resp.Report.FollowUps[0].RelatedID)

	// The lead is actually in Postgres.
	var count int
	err := s.dbPool.QueryRow(context.Background(),
		`SELECT count(*) FROM leads WHERE org_id = $1 AND name = $2`,
		"org-int-1", "Jan Kowalski").Scan(&count)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 1, count)

	// A counts-only report lands on the fanout exchange.
	select {
	case msg := <-s.reports:
		var report map[string]any
		require.NoError(s.T(), json.Unmarshal(msg.Body, &report))
		require.Equal(s.T(), "org-int-1", report["orgId"])
		require.EqualValues(s.T(), 1, report["createdLeads"])
		require.NotContains(s.T(), report, "drafts")
	case <-time.After(10 * time.Second):
		s.T().Fatal("no execution report published within 10s")
	}
}

func (s *IntegrationTestSuite) TestListEndpointsAreOrgScoped() {
	s.aiClient.On("Transcribe", mock.Anything, mock.Anything, "note.ogg").
		Return("dodaj annę nowak", nil).Once()
	s.aiClient.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"actions": [{"type": "create_lead", "payload": {"name": "Anna Nowak"}}]}`, ai.Usage{}, nil).Once()

	rec := s.postVoiceNote("org-int-2", map[string]string{"auto_execute": "true"})
	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())

	// org-int-2 sees its lead.
	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	req.Header.Set("Authorization", "Bearer "+s.token("org-int-2"))
	listRec := httptest.NewRecorder()
	s.app.ServeHTTP(listRec, req)
	require.Equal(s.T(), http.StatusOK, listRec.Code)

	var listResp handler.LeadListResponse
	require.NoError(s.T(), json.Unmarshal(listRec.Body.Bytes(), &listResp))
	require.Len(s.T(), listResp.Leads, 1)

	// A different org sees nothing.
	req = httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	req.Header.Set("Authorization", "Bearer "+s.token("org-int-3"))
	otherRec := httptest.NewRecorder()
	s.app.ServeHTTP(otherRec, req)
	require.Equal(s.T(), http.StatusOK, otherRec.Code)

	var otherResp handler.LeadListResponse
	require.NoError(s.T(), json.Unmarshal(otherRec.Body.Bytes(), &otherResp))
	require.Empty(s.T(), otherResp.Leads)
}
