package service

import (
	"context"
	"errors"
	"testing"

	"barriored/internal/model"
	"barriored/internal/moderation"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memOutbox struct {
	rows    []model.ModerationOutbox
	retried []uint64
	sent    []uint64
}

func (m *memOutbox) List(context.Context, int) ([]model.ModerationOutbox, error) {
	return m.rows, nil
}

func (m *memOutbox) RetryUpdate(_ context.Context, id uint64) error {
	m.retried = append(m.retried, id)
	return nil
}

func (m *memOutbox) SuccessUpdate(_ context.Context, id uint64) error {
	m.sent = append(m.sent, id)
	return nil
}

func TestRelayerDrainOnce(t *testing.T) {
	repo := &memOutbox{rows: []model.ModerationOutbox{
		{ID: 1, EventType: model.EventApproved, Kind: moderation.KindBusiness, RecordID: 7},
		{ID: 2, EventType: model.EventRejected, Kind: moderation.KindPost, RecordID: 8},
	}}
	sender := func(_ context.Context, ob *model.ModerationOutbox) error {
		if ob.ID == 2 {
			return errors.New("broker down")
		}
		return nil
	}
	r := NewOutboxRelayer(repo, sender, 0, 0, zap.NewNop())
	r.drainOnce(context.Background())

	assert.Equal(t, []uint64{1}, repo.sent)
	assert.Equal(t, []uint64{2}, repo.retried)
}

type recordingProducer struct {
	key     string
	headers map[string]string
}

func (p *recordingProducer) Send(_ context.Context, key string, _ []byte, headers map[string]string) error {
	p.key = key
	p.headers = headers
	return nil
}

func TestChainKafkaSender(t *testing.T) {
	producer := &recordingProducer{}
	calls := 0
	counting := func(context.Context, *model.ModerationOutbox) error {
		calls++
		return nil
	}
	send := ChainSenders(LogSender(zap.NewNop()), KafkaSender(producer), counting)

	err := send(context.Background(), &model.ModerationOutbox{ID: 3, EventType: model.EventSubmitted, Kind: moderation.KindPost, RecordID: 42})
	require.NoError(t, err)
	assert.Equal(t, "post:42", producer.key)
	assert.Equal(t, model.EventSubmitted, producer.headers["event_type"])
	assert.Equal(t, 1, calls)
}

func TestChainResumesFromFailedSender(t *testing.T) {
	published := 0
	publish := func(context.Context, *model.ModerationOutbox) error {
		published++
		return nil
	}
	mailFailures := 1
	mailed := 0
	mail := func(context.Context, *model.ModerationOutbox) error {
		if mailFailures > 0 {
			mailFailures--
			return errors.New("smtp timeout")
		}
		mailed++
		return nil
	}
	send := ChainSenders(publish, mail)
	ob := &model.ModerationOutbox{ID: 8, EventType: model.EventApproved, Kind: moderation.KindBusiness, RecordID: 5}

	require.Error(t, send(context.Background(), ob))
	require.NoError(t, send(context.Background(), ob))
	assert.Equal(t, 1, published)
	assert.Equal(t, 1, mailed)

	// 成功后状态清空，同一 id 再次投递从头开始
	require.NoError(t, send(context.Background(), ob))
	assert.Equal(t, 2, published)
}

type recordingMailer struct {
	to      []string
	subject string
	failN   int
}

func (m *recordingMailer) Send(to, subject, _ string) error {
	if m.failN > 0 {
		m.failN--
		return errors.New("smtp timeout")
	}
	m.to = append(m.to, to)
	m.subject = subject
	return nil
}

func newTestNotifier(users UserFinder, mailer MailSender) *Notifier {
	n := NewNotifier(users, mailer, "whatsapp.barriored.co", zap.NewNop())
	n.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return n
}

func TestNotifierSendsDecisionMail(t *testing.T) {
	p := phone
	users := newMemUsers(
		model.User{ID: 5, FullName: "Ana", Email: "ana@example.com"},
		model.User{ID: 6, Email: phone + "@whatsapp.barriored.co", Phone: &p},
	)
	mailer := &recordingMailer{failN: 2}
	send := newTestNotifier(users, mailer).Sender()
	ctx := context.Background()

	require.NoError(t, send(ctx, &model.ModerationOutbox{ID: 1, EventType: model.EventApproved, Kind: moderation.KindBusiness, OwnerID: 5, Payload: `{"title":"Panaderia La Esquina"}`}))
	assert.Equal(t, []string{"ana@example.com"}, mailer.to)

	// 占位邮箱和非审核事件不发邮件
	require.NoError(t, send(ctx, &model.ModerationOutbox{ID: 2, EventType: model.EventRejected, Kind: moderation.KindPost, OwnerID: 6}))
	require.NoError(t, send(ctx, &model.ModerationOutbox{ID: 3, EventType: model.EventSubmitted, Kind: moderation.KindPost, OwnerID: 5}))
	require.NoError(t, send(ctx, &model.ModerationOutbox{ID: 4, EventType: model.EventApproved, Kind: moderation.KindPost, OwnerID: 99}))
	assert.Len(t, mailer.to, 1)
}

func TestNotifierGivesUp(t *testing.T) {
	users := newMemUsers(model.User{ID: 5, Email: "ana@example.com"})
	mailer := &recordingMailer{failN: 10}
	send := newTestNotifier(users, mailer).Sender()

	err := send(context.Background(), &model.ModerationOutbox{ID: 1, EventType: model.EventApproved, Kind: moderation.KindBusiness, OwnerID: 5})
	assert.Error(t, err)
	assert.Empty(t, mailer.to)
}

func TestPayloadTitle(t *testing.T) {
	assert.Equal(t, "Bazar", payloadTitle(`{"title":"Bazar","kind":"post"}`))
	assert.Equal(t, "", payloadTitle("not json"))
	assert.Equal(t, "negocio", kindLabel(moderation.KindBusiness))
}
