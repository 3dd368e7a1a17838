package notification

import (
	"strconv"
	"strings"
	"time"

	domcatalog "github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/notification"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	domreport "github.com/Zhima-Mochi/minishop-storefront/internal/domain/report"
	domreview "github.com/Zhima-Mochi/minishop-storefront/internal/domain/review"
	domsupport "github.com/Zhima-Mochi/minishop-storefront/internal/domain/support"
	domuser "github.com/Zhima-Mochi/minishop-storefront/internal/domain/user"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	timeLayout = "2006-01-02 15:04:05"
	dateLayout = "2006-01-02"

	currency     = " ريال"
	notLinked    = "غير مربوط"
	notAvailable = "غير متوفر"
	noDetails    = "لا توجد تفاصيل"

	userThumbnail  = "https://i.imgur.com/user-icon.png"
	orderThumbnail = "https://i.imgur.com/order-icon.png"
)

var statusLabels = map[domorder.Status]struct{ emoji, text string }{
	domorder.StatusProcessing: {"⏳", "قيد المعالجة"},
	domorder.StatusConfirmed:  {"✅", "تم التأكيد"},
	domorder.StatusShipped:    {"🚚", "تم الشحن"},
	domorder.StatusDelivered:  {"📦", "تم التوصيل"},
	domorder.StatusCancelled:  {"❌", "ملغي"},
}

// Renderer turns domain events into channel alerts. Field order is part of the format
// operators read, so it must not change.
type Renderer struct {
	loc     *time.Location
	printer *message.Printer
	now     func() time.Time
}

func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{
		loc:     loc,
		printer: message.NewPrinter(language.English),
		now:     time.Now,
	}
}

// Events lists the event names Render understands.
func (r *Renderer) Events() []string {
	return []string{
		domuser.RegisteredEvent{}.EventName(),
		domorder.OrderCreatedEvent{}.EventName(),
		domorder.StatusChangedEvent{}.EventName(),
		domorder.PaymentSucceededEvent{}.EventName(),
		domorder.PaymentFailedEvent{}.EventName(),
		domsupport.MessageReceivedEvent{}.EventName(),
		domcatalog.ProductOutOfStockEvent{}.EventName(),
		domreport.GeneratedEvent{}.EventName(),
		domreview.SubmittedEvent{}.EventName(),
		notification.SystemErrorEvent{}.EventName(),
	}
}

// Render reports false for events that have no alert template.
func (r *Renderer) Render(e domoutbox.Event) (notification.Event, bool) {
	var ev notification.Event
	switch v := e.(type) {
	case domuser.RegisteredEvent:
		ev = r.newUser(v)
	case domorder.OrderCreatedEvent:
		ev = r.newOrder(v)
	case domorder.StatusChangedEvent:
		ev = r.statusChange(v)
	case domsupport.MessageReceivedEvent:
		ev = r.supportMessage(v)
	case domorder.PaymentSucceededEvent:
		ev = r.paymentSuccess(v)
	case domorder.PaymentFailedEvent:
		ev = r.paymentFailure(v)
	case domcatalog.ProductOutOfStockEvent:
		ev = r.outOfStock(v)
	case domreport.GeneratedEvent:
		ev = r.dailyReport(v)
	case domreview.SubmittedEvent:
		ev = r.newReview(v)
	case notification.SystemErrorEvent:
		ev = r.systemError(v)
	default:
		return notification.Event{}, false
	}
	ev.Timestamp = r.now().UTC()
	return ev, true
}

func (r *Renderer) newUser(e domuser.RegisteredEvent) notification.Event {
	discord := notLinked
	if e.DiscordID != "" {
		discord = mention(e.DiscordID)
	}
	return notification.Event{
		Kind:        notification.KindNewUser,
		Title:       "🎉 مستخدم جديد",
		Description: "تم تسجيل مستخدم جديد في DEVIX Store",
		Color:       notification.ColorSuccess,
		Fields: []notification.Field{
			inline("👤 الاسم", e.Name),
			inline("📧 البريد", e.Email),
			inline("📱 الجوال", e.Phone),
			inline("🎮 Discord ID", discord),
			block("📅 تاريخ التسجيل", r.clock(e.OccurredAt)),
		},
		Thumbnail: userThumbnail,
	}
}

func (r *Renderer) newOrder(e domorder.OrderCreatedEvent) notification.Event {
	products := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		products = append(products, "• "+l.Name+" (×"+strconv.Itoa(l.Quantity)+") - "+r.amount(l.Total()))
	}
	return notification.Event{
		Kind:        notification.KindNewOrder,
		Title:       "🛒 طلب جديد",
		Description: "**رقم الطلب:** #" + e.OrderNumber,
		Color:       notification.ColorOrder,
		Fields: []notification.Field{
			inline("👤 العميل", e.Customer.Name),
			inline("📧 البريد", e.Customer.Email),
			inline("📱 الجوال", e.Customer.Phone),
			inline("🎮 Discord", customerMention(e.Customer)),
			inline("💰 المبلغ الإجمالي", r.amount(e.Total)),
			inline("💳 طريقة الدفع", strings.ToUpper(e.PaymentMethod)),
			block("📦 المنتجات", strings.Join(products, "\n")),
			block("📍 حالة الطلب", statusLabels[domorder.StatusProcessing].emoji+" "+statusLabels[domorder.StatusProcessing].text),
		},
		Thumbnail: orderThumbnail,
	}
}

func (r *Renderer) statusChange(e domorder.StatusChangedEvent) notification.Event {
	label := statusLabels[e.To]
	color := notification.ColorInfo
	if e.To == domorder.StatusDelivered {
		color = notification.ColorSuccess
	}
	return notification.Event{
		Kind:        notification.KindOrderStatus,
		Title:       label.emoji + " تحديث حالة الطلب",
		Description: "تم تحديث حالة الطلب #" + e.OrderNumber,
		Color:       color,
		Fields: []notification.Field{
			inline("رقم الطلب", "#"+e.OrderNumber),
			inline("الحالة الجديدة", label.text),
			inline("العميل", customerMention(e.Customer)),
		},
	}
}

func (r *Renderer) supportMessage(e domsupport.MessageReceivedEvent) notification.Event {
	phone := e.Phone
	if phone == "" {
		phone = notAvailable
	}
	return notification.Event{
		Kind:        notification.KindSupportMessage,
		Title:       "💬 رسالة دعم فني جديدة",
		Description: e.Message.Message,
		Color:       notification.ColorWarning,
		Fields: []notification.Field{
			inline("👤 المرسل", e.Name),
			inline("📧 البريد", e.Email),
			inline("📱 الجوال", phone),
			inline("🏷️ نوع المشكلة", e.Type),
			inline("⏰ الوقت", r.clock(e.OccurredAt)),
		},
	}
}

func (r *Renderer) paymentSuccess(e domorder.PaymentSucceededEvent) notification.Event {
	return notification.Event{
		Kind:        notification.KindPaymentSuccess,
		Title:       "💳 دفع ناجح",
		Description: "تمت عملية الدفع بنجاح",
		Color:       notification.ColorSuccess,
		Fields: []notification.Field{
			inline("🆔 رقم المعاملة", e.TransactionID),
			inline("💰 المبلغ", r.amount(e.Amount)),
			inline("💳 الطريقة", e.Method),
			inline("👤 العميل", customerMention(e.Customer)),
			inline("📦 رقم الطلب", "#"+e.OrderNumber),
		},
	}
}

func (r *Renderer) paymentFailure(e domorder.PaymentFailedEvent) notification.Event {
	return notification.Event{
		Kind:        notification.KindPaymentFailure,
		Title:       "⚠️ فشل عملية الدفع",
		Description: e.Reason,
		Color:       notification.ColorError,
		Fields: []notification.Field{
			inline("👤 العميل", e.Customer.Name),
			inline("📧 البريد", e.Customer.Email),
			inline("💰 المبلغ", r.amount(e.Amount)),
			inline("💳 الطريقة", e.Method),
			block("❌ سبب الفشل", e.Reason),
		},
	}
}

func (r *Renderer) outOfStock(e domcatalog.ProductOutOfStockEvent) notification.Event {
	return notification.Event{
		Kind:        notification.KindOutOfStock,
		Title:       "⚠️ تحذير: منتج نفذ من المخزون",
		Description: "المنتج **" + e.Name + "** نفذ من المخزون",
		Color:       notification.ColorWarning,
		Fields: []notification.Field{
			inline("📦 المنتج", e.Name),
			inline("🆔 رقم المنتج", "#"+strconv.FormatInt(e.ProductID, 10)),
			inline("💰 السعر", r.amount(e.UnitPrice)),
			inline("📊 الكمية المتبقية", "0"),
		},
	}
}

func (r *Renderer) dailyReport(e domreport.GeneratedEvent) notification.Event {
	d := e.Report
	return notification.Event{
		Kind:        notification.KindDailyReport,
		Title:       "📊 تقرير المبيعات اليومي",
		Description: "تقرير مبيعات يوم " + d.Date.In(r.loc).Format(dateLayout),
		Color:       notification.ColorInfo,
		Fields: []notification.Field{
			inline("🛒 إجمالي الطلبات", strconv.Itoa(d.TotalOrders)),
			inline("💰 إجمالي المبيعات", r.amount(d.TotalRevenue)),
			inline("👥 عملاء جدد", strconv.Itoa(d.NewCustomers)),
			inline("📦 طلبات مكتملة", strconv.Itoa(d.CompletedOrders)),
			inline("⏳ طلبات قيد التنفيذ", strconv.Itoa(d.PendingOrders)),
			inline("❌ طلبات ملغاة", strconv.Itoa(d.CancelledOrders)),
		},
	}
}

func (r *Renderer) newReview(e domreview.SubmittedEvent) notification.Event {
	return notification.Event{
		Kind:        notification.KindNewReview,
		Title:       "⭐ تقييم جديد",
		Description: e.Comment,
		Color:       notification.ColorInfo,
		Fields: []notification.Field{
			inline("👤 العميل", e.CustomerName),
			inline("📦 المنتج", e.ProductName),
			inline("⭐ التقييم", strings.Repeat("⭐", max(e.Rating, 0))),
			inline("📅 التاريخ", r.date(e.OccurredAt)),
		},
	}
}

func (r *Renderer) systemError(e notification.SystemErrorEvent) notification.Event {
	details := e.Stack
	if details == "" {
		details = noDetails
	}
	return notification.Event{
		Kind:        notification.KindSystemError,
		Title:       "🚨 خطأ في النظام",
		Description: e.Message,
		Color:       notification.ColorError,
		Fields: []notification.Field{
			inline("📝 نوع الخطأ", e.Type),
			inline("📍 الموقع", e.Location),
			block("⏰ الوقت", r.clock(e.OccurredAt)),
			block("🔍 التفاصيل", "```"+details+"```"),
		},
	}
}

// amount renders money with thousands separators and at most two decimals, e.g. "5,049 ريال".
func (r *Renderer) amount(d decimal.Decimal) string {
	d = d.Round(2)
	whole := d.Truncate(0)
	frac := d.Sub(whole).Abs()

	out := r.printer.Sprintf("%d", whole.IntPart())
	if d.IsNegative() && whole.IsZero() {
		out = "-" + out
	}
	if !frac.IsZero() {
		out += strings.TrimPrefix(frac.String(), "0")
	}
	return out + currency
}

func (r *Renderer) clock(t time.Time) string {
	if t.IsZero() {
		t = r.now()
	}
	return t.In(r.loc).Format(timeLayout)
}

func (r *Renderer) date(t time.Time) string {
	if t.IsZero() {
		t = r.now()
	}
	return t.In(r.loc).Format(dateLayout)
}

func customerMention(c domorder.Customer) string {
	if c.DiscordID == "" {
		return notLinked
	}
	return mention(c.DiscordID)
}

func mention(id string) string { return "<@" + id + ">" }

func inline(name, value string) notification.Field {
	return notification.Field{Name: name, Value: value, Inline: true}
}

func block(name, value string) notification.Field {
	return notification.Field{Name: name, Value: value}
}
