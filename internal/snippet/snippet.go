package snippet

import (
	"context"
	"html/template"
	"io"

	"github.com/smallbiznis/siftbridge/internal/identity"
	"github.com/smallbiznis/siftbridge/internal/session"
	settingsdomain "github.com/smallbiznis/siftbridge/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// beaconTemplate mirrors the vendor's page snippet: account key, user id and
// session id pushed into the queue, then the beacon script loaded once.
const beaconTemplate = `<script>
  var _user_id = '{{.UserID}}';
  var _session_id = '{{.SessionID}}';

  var _sift = window._sift = window._sift || [];
  _sift.push(['_setAccount', '{{.JSKey}}']);
  _sift.push(['_setUserId', _user_id]);
  _sift.push(['_setSessionId', _session_id]);
  _sift.push(['_trackPageview']);

  (function(d, s, id) {
    var e, f = d.getElementsByTagName(s)[0];
    if (d.getElementById(id)) {return;}
    e = d.createElement(s); e.id = id;
    e.src = 'https://cdn.sift.com/s.js';
    f.parentNode.insertBefore(e, f);
  })(document, 'script', 'sift-beacon');
</script>
`

var beacon = template.Must(template.New("sift-beacon").Parse(beaconTemplate))

type Data struct {
	JSKey     string
	UserID    string
	SessionID string
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Settings settingsdomain.Service
	Users    *identity.Resolver
	Sessions *session.Resolver
}

// Renderer emits the tracking snippet for storefront pages.
type Renderer struct {
	log      *zap.Logger
	settings settingsdomain.Service
	users    *identity.Resolver
	sessions *session.Resolver
}

func NewRenderer(p Params) *Renderer {
	return &Renderer{
		log:      p.Log.Named("snippet"),
		settings: p.Settings,
		users:    p.Users,
		sessions: p.Sessions,
	}
}

// Render resolves the visitor's identity and session and writes the snippet.
// Resolving the session starts one when the visitor has none yet.
func (r *Renderer) Render(ctx context.Context, w io.Writer) error {
	jsKey, err := r.settings.JSKey(ctx)
	if err != nil {
		return err
	}

	sid, err := r.sessions.SessionID(ctx)
	if err != nil {
		return err
	}

	return beacon.Execute(w, Data{
		JSKey:     jsKey,
		UserID:    r.users.UserID(ctx, identity.Current()),
		SessionID: sid,
	})
}

var Module = fx.Module("snippet",
	fx.Provide(NewRenderer),
)
