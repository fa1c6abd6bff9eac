package notification

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"
	"io/fs"
	"regexp"
	"strings"
	"sync"

	"github.com/Behyna/notification-services/internal/errs"
	"github.com/Behyna/notification-services/pkg/mailer"
	"go.uber.org/zap"
)

var titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

type RendererConfig struct {
	Premailer bool
	Protocol  string
	Domain    string
	StaticURL string
}

// EmailRenderer renders email_<name>.html templates from fsys.
type EmailRenderer struct {
	fsys  fs.FS
	cfg   RendererConfig
	cache sync.Map
}

func NewEmailRenderer(fsys fs.FS, cfg RendererConfig) *EmailRenderer {
	return &EmailRenderer{fsys: fsys, cfg: cfg}
}

// Render returns the HTML body and the content of its <title> tag.
func (r *EmailRenderer) Render(name string, data map[string]any) (string, string, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return "", "", err
	}

	vars := make(map[string]any, len(data)+3)
	for k, v := range data {
		vars[k] = v
	}
	vars["protocol"] = r.cfg.Protocol
	vars["domain"] = r.cfg.Domain
	vars["static_url"] = r.cfg.StaticURL

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", "", errs.Configuration("email %s: %v", name, err)
	}
	body := buf.String()

	var title string
	if match := titlePattern.FindStringSubmatch(body); match != nil {
		title = html.UnescapeString(strings.TrimSpace(match[1]))
	}

	if r.cfg.Premailer {
		body, err = mailer.InlineCSS(body)
		if err != nil {
			return "", "", err
		}
	}

	return body, title, nil
}

func (r *EmailRenderer) template(name string) (*template.Template, error) {
	if cached, ok := r.cache.Load(name); ok {
		return cached.(*template.Template), nil
	}

	file := fmt.Sprintf("email_%s.html", name)
	tmpl, err := template.ParseFS(r.fsys, file)
	if err != nil {
		return nil, errs.Configuration("email template %s: %v", file, err)
	}

	r.cache.Store(name, tmpl)
	return tmpl, nil
}

type EmailChannel struct {
	renderer *EmailRenderer
	mailer   mailer.Mailer
	from     string
	logger   *zap.Logger
}

func NewEmailChannel(renderer *EmailRenderer, m mailer.Mailer, from string, logger *zap.Logger) *EmailChannel {
	return &EmailChannel{renderer: renderer, mailer: m, from: from, logger: logger}
}

func (c *EmailChannel) Kind() ChannelKind {
	return Email
}

func (c *EmailChannel) PrepareReceivers(_ Notification, receivers []Receiver) []Receiver {
	return uniqueBy(receivers, byID)
}

func (c *EmailChannel) PrepareMessage(n Notification) (any, error) {
	if n.Definition.EmailName == "" {
		return nil, errs.Configuration("%s: email name is required", n.Definition.Name)
	}
	return templateData(n.Item, n.Context), nil
}

// SendInner stops at the first failed receiver.
func (c *EmailChannel) SendInner(ctx context.Context, n Notification, receivers []Receiver, message any) (Result, error) {
	def := n.Definition
	base, _ := message.(map[string]any)

	subject, err := render(def.Name+".subject", def.Subject, base)
	if err != nil {
		return Result{}, err
	}

	sender := def.Sender
	if sender == "" {
		sender = c.from
	}

	var result Result
	for _, r := range receivers {
		vars := make(map[string]any, len(base)+1)
		for k, v := range base {
			vars[k] = v
		}
		vars["receiver"] = r

		body, title, err := c.renderer.Render(def.EmailName, vars)
		if err != nil {
			return result, err
		}

		emailSubject := subject
		if emailSubject == "" {
			emailSubject = title
		}
		if emailSubject == "" {
			return result, errs.Configuration("%s: subject is required when the template has no title", def.Name)
		}

		err = c.mailer.Send(ctx, mailer.Email{
			From:             sender,
			To:               []string{r.Address()},
			Subject:          emailSubject,
			HTML:             body,
			Attachments:      def.Attachments,
			Categories:       def.EmailCategories,
			UnsubscribeGroup: def.UnsubscribeGroup,
		})
		if err != nil {
			return result, errs.Transport("email %s to %s: %v", def.EmailName, r.Email, err)
		}
		result.Sent++
	}

	return result, nil
}

func (c *EmailChannel) HistoryDetails(n Notification, _ any) string {
	return n.Definition.EmailName
}

func (c *EmailChannel) FormatReceiver(r Receiver) string {
	return r.Email
}
