package jetstream_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/logger"
	"github.com/blockful/anticapture-sub000/internal/mocks"
	"github.com/blockful/anticapture-sub000/internal/providers/jetstream"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var testConfig = jetstream.Config{
	URL:             "nats://localhost:4222",
	StreamName:      "GOVERNANCE_EVENTS",
	MaxReconnects:   5,
	ReconnectWait:   time.Second,
	ConnectionName:  "test",
	DuplicateWindow: 10 * time.Minute,
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "governance.ens.transfer", jetstream.Subject(domain.DaoENS, domain.EventTypeTransfer))
	assert.Equal(t, "governance.nouns.vote_cast", jetstream.Subject(domain.DaoNOUNS, domain.EventTypeVoteCast))
	assert.Equal(t, "governance.uni.>", jetstream.DAOSubject(domain.DaoUNI))

	event := &domain.GovernanceEvent{DaoID: domain.DaoENS, TxHash: "0xabc", LogIndex: 7}
	assert.Equal(t, "ENS:0xabc-7", jetstream.MessageID(event))
}

func TestNewPublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the stream", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		natsJS := mocks.NewMockNatsJetStream(ctrl)
		conn := mocks.NewMockNatsConn(ctrl)
		js := mocks.NewMockJetStream(ctrl)

		natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(conn, js, nil)
		js.EXPECT().CreateOrUpdateStream(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, cfg natsjs.StreamConfig) error {
			assert.Equal(t, "GOVERNANCE_EVENTS", cfg.Name)
			assert.Equal(t, []string{"governance.>"}, cfg.Subjects)
			assert.Equal(t, 10*time.Minute, cfg.Duplicates)
			return nil
		})

		pub, err := jetstream.NewPublisher(ctx, testConfig, natsJS, mocks.NewMockJSON(ctrl))
		require.NoError(t, err)
		require.NotNil(t, pub)
	})

	t.Run("connection failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		natsJS := mocks.NewMockNatsJetStream(ctrl)
		natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(nil, nil, errors.New("no servers"))

		_, err := jetstream.NewPublisher(ctx, testConfig, natsJS, mocks.NewMockJSON(ctrl))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to NATS")
	})

	t.Run("stream failure closes the connection", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		natsJS := mocks.NewMockNatsJetStream(ctrl)
		conn := mocks.NewMockNatsConn(ctrl)
		js := mocks.NewMockJetStream(ctrl)

		natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(conn, js, nil)
		js.EXPECT().CreateOrUpdateStream(ctx, gomock.Any()).Return(errors.New("denied"))
		conn.EXPECT().Close()

		_, err := jetstream.NewPublisher(ctx, testConfig, natsJS, mocks.NewMockJSON(ctrl))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create or update stream GOVERNANCE_EVENTS")
	})
}

func TestPublisher_PublishEvent(t *testing.T) {
	ctx := context.Background()
	event := &domain.GovernanceEvent{
		DaoID:     domain.DaoENS,
		EventType: domain.EventTypeDelegateChanged,
		TxHash:    "0xfeed",
		LogIndex:  3,
	}

	tests := []struct {
		name       string
		setupMocks func(js *mocks.MockJetStream, json *mocks.MockJSON)
		wantErr    string
	}{
		{
			name: "publishes with a deduplication id",
			setupMocks: func(js *mocks.MockJetStream, json *mocks.MockJSON) {
				json.EXPECT().Marshal(event).Return([]byte(`{}`), nil)
				js.EXPECT().Publish(ctx, "governance.ens.delegate_changed", []byte(`{}`), gomock.Any()).
					Return(&natsjs.PubAck{Stream: "GOVERNANCE_EVENTS", Sequence: 1}, nil)
			},
		},
		{
			name: "duplicate ack is not an error",
			setupMocks: func(js *mocks.MockJetStream, json *mocks.MockJSON) {
				json.EXPECT().Marshal(event).Return([]byte(`{}`), nil)
				js.EXPECT().Publish(ctx, "governance.ens.delegate_changed", []byte(`{}`), gomock.Any()).
					Return(&natsjs.PubAck{Duplicate: true}, nil)
			},
		},
		{
			name: "marshal failure",
			setupMocks: func(js *mocks.MockJetStream, json *mocks.MockJSON) {
				json.EXPECT().Marshal(event).Return(nil, errors.New("bad"))
			},
			wantErr: "failed to marshal event",
		},
		{
			name: "publish failure",
			setupMocks: func(js *mocks.MockJetStream, json *mocks.MockJSON) {
				json.EXPECT().Marshal(event).Return([]byte(`{}`), nil)
				js.EXPECT().Publish(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
			},
			wantErr: "failed to publish event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			natsJS := mocks.NewMockNatsJetStream(ctrl)
			conn := mocks.NewMockNatsConn(ctrl)
			js := mocks.NewMockJetStream(ctrl)
			json := mocks.NewMockJSON(ctrl)

			natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(conn, js, nil)
			js.EXPECT().CreateOrUpdateStream(ctx, gomock.Any()).Return(nil)
			tt.setupMocks(js, json)

			pub, err := jetstream.NewPublisher(ctx, testConfig, natsJS, json)
			require.NoError(t, err)

			err = pub.PublishEvent(ctx, event)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
