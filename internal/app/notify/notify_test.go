package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dashstatus/internal/app/notify"
	"github.com/slok/dashstatus/internal/feedback"
	"github.com/slok/dashstatus/internal/model"
	"github.com/slok/dashstatus/internal/presenter/fake"
)

func TestService_Run(t *testing.T) {
	tests := map[string]struct {
		req       notify.Request
		expMethod string
		exp       func(t *testing.T, c fake.Call)
		expErr    bool
	}{
		"a toast should be shown": {
			req:       notify.Request{Target: notify.TargetToast, Kind: "success", Message: "Pronto"},
			expMethod: fake.MethodShowToast,
			exp: func(t *testing.T, c fake.Call) {
				assert.Equal(t, model.StatusKindSuccess, c.Toast.Kind)
				assert.Equal(t, "Pronto", c.Toast.Message)
				assert.Equal(t, feedback.DefaultToastDuration, c.Toast.Duration)
			},
		},

		"a toast without kind should be an info toast": {
			req:       notify.Request{Target: notify.TargetToast, Message: "Olá"},
			expMethod: fake.MethodShowToast,
			exp: func(t *testing.T, c fake.Call) {
				assert.Equal(t, model.StatusKindInfo, c.Toast.Kind)
			},
		},

		"a status card should be shown": {
			req:       notify.Request{Target: notify.TargetStatus, Kind: "warning", Title: "Cache", Message: "Cache expirado"},
			expMethod: fake.MethodShowStatus,
			exp: func(t *testing.T, c fake.Call) {
				assert.Equal(t, model.StatusKindWarning, c.Card.Kind)
				assert.Equal(t, "Cache", c.Card.Title)
				assert.Equal(t, "Cache expirado", c.Card.Message)
				assert.False(t, c.Card.HasProgress())
			},
		},

		"a log line should be appended": {
			req:       notify.Request{Target: notify.TargetLog, Kind: "error", Message: "Falha"},
			expMethod: fake.MethodAppendLog,
			exp: func(t *testing.T, c fake.Call) {
				assert.Equal(t, model.LogLevelError, c.Entry.Level)
				assert.Equal(t, "Falha", c.Entry.Message)
			},
		},

		"a loading toast should fail": {
			req:    notify.Request{Target: notify.TargetToast, Kind: "loading", Message: "x"},
			expErr: true,
		},

		"a status card without title should fail": {
			req:    notify.Request{Target: notify.TargetStatus, Message: "x"},
			expErr: true,
		},

		"a log line with a status kind should fail": {
			req:    notify.Request{Target: notify.TargetLog, Kind: "loading", Message: "x"},
			expErr: true,
		},

		"an unknown target should fail": {
			req:    notify.Request{Target: "email", Message: "x"},
			expErr: true,
		},

		"a missing message should fail": {
			req:    notify.Request{Target: notify.TargetToast},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			p := fake.NewPresenter()
			sys, err := feedback.NewSystem(feedback.SystemConfig{Presenter: p})
			require.NoError(err)

			svc, err := notify.NewService(notify.ServiceConfig{Feedback: sys})
			require.NoError(err)

			err = svc.Run(context.TODO(), test.req)
			if test.expErr {
				require.ErrorIs(err, model.ErrNotValid)
				require.Empty(p.Calls())
				return
			}
			require.NoError(err)

			calls := p.Calls()
			require.Len(calls, 1)
			require.Equal(test.expMethod, calls[0].Method)
			test.exp(t, calls[0])
		})
	}
}
