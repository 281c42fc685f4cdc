package handlers

import (
	"time"

	"familycal/internal/calendar"
	"familycal/internal/models"
)

// JSON shapes returned to the client. Events carry the derived isAllDay
// flag so the client never re-implements the calendar-day rule.

type userView struct {
	ID          string     `json:"id"`
	Phone       *string    `json:"phone,omitempty"`
	Nickname    string     `json:"nickname"`
	AvatarURL   *string    `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func toUserView(u *models.User) userView {
	return userView{
		ID:          u.ID,
		Phone:       u.Phone,
		Nickname:    u.DisplayName(),
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

type sessionView struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      userView  `json:"user"`
}

type familyView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AdminID     string    `json:"adminId"`
	InviteCode  string    `json:"inviteCode"`
	MemberCount int       `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toFamilyView(f *models.Family) familyView {
	return familyView{
		ID:          f.ID,
		Name:        f.Name,
		AdminID:     f.AdminID,
		InviteCode:  f.InviteCode,
		MemberCount: f.MemberCount,
		CreatedAt:   f.CreatedAt,
	}
}

func toFamilyViews(families []models.Family) []familyView {
	out := make([]familyView, 0, len(families))
	for i := range families {
		out = append(out, toFamilyView(&families[i]))
	}
	return out
}

type memberView struct {
	ID                  string            `json:"id"`
	UserID              string            `json:"userId"`
	Role                models.MemberRole `json:"role"`
	Nickname            string            `json:"nickname"`
	JoinedAt            time.Time         `json:"joinedAt"`
	NotificationEnabled bool              `json:"notificationEnabled"`
}

func toMemberViews(members []models.FamilyMember) []memberView {
	out := make([]memberView, 0, len(members))
	for _, m := range members {
		out = append(out, memberView{
			ID:                  m.ID,
			UserID:              m.UserID,
			Role:                m.Role,
			Nickname:            m.Nickname,
			JoinedAt:            m.JoinedAt,
			NotificationEnabled: m.NotificationEnabled,
		})
	}
	return out
}

type eventView struct {
	ID           string                `json:"id"`
	FamilyID     string                `json:"familyId"`
	CreatorID    string                `json:"creatorId"`
	Title        string                `json:"title"`
	Description  *string               `json:"description,omitempty"`
	Location     *string               `json:"location,omitempty"`
	StartDate    time.Time             `json:"startDate"`
	EndDate      time.Time             `json:"endDate"`
	IsAllDay     bool                  `json:"isAllDay"`
	Category     *models.EventCategory `json:"category,omitempty"`
	RepeatKind   models.RepeatKind     `json:"repeatKind"`
	RepeatDays   int                   `json:"repeatIntervalDays,omitempty"`
	ReminderTime *time.Time            `json:"reminderTime,omitempty"`
	CanEdit      bool                  `json:"canEdit"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

func toEventView(ev *models.Event, scope models.Scope, loc *time.Location) eventView {
	kind := ev.Repeat.Kind
	if kind == "" {
		kind = models.RepeatNone
	}
	return eventView{
		ID:           ev.ID,
		FamilyID:     ev.FamilyID,
		CreatorID:    ev.CreatorID,
		Title:        ev.Title,
		Description:  ev.Description,
		Location:     ev.Location,
		StartDate:    ev.StartDate,
		EndDate:      ev.EndDate,
		IsAllDay:     ev.IsAllDay(loc),
		Category:     ev.Category,
		RepeatKind:   kind,
		RepeatDays:   ev.Repeat.IntervalDays,
		ReminderTime: ev.ReminderTime,
		CanEdit:      ev.CanEdit(scope.UserID),
		UpdatedAt:    ev.UpdatedAt,
	}
}

func toEventViews(events []models.Event, scope models.Scope, loc *time.Location) []eventView {
	out := make([]eventView, 0, len(events))
	for i := range events {
		out = append(out, toEventView(&events[i], scope, loc))
	}
	return out
}

type participantView struct {
	ID          string                `json:"id"`
	UserID      string                `json:"userId"`
	Status      models.ResponseStatus `json:"status"`
	Comment     *string               `json:"comment,omitempty"`
	RespondedAt *time.Time            `json:"respondedAt,omitempty"`
}

func toParticipantView(p *models.EventParticipant) participantView {
	return participantView{
		ID:          p.ID,
		UserID:      p.UserID,
		Status:      p.Status,
		Comment:     p.Comment,
		RespondedAt: p.RespondedAt,
	}
}

func toParticipantViews(participants []models.EventParticipant) []participantView {
	out := make([]participantView, 0, len(participants))
	for i := range participants {
		out = append(out, toParticipantView(&participants[i]))
	}
	return out
}

type tallyView struct {
	Pending   int `json:"pending"`
	Accepted  int `json:"accepted"`
	Declined  int `json:"declined"`
	Tentative int `json:"tentative"`
	Total     int `json:"total"`
}

type daySlotView struct {
	Day       int    `json:"day"`
	Date      string `json:"date,omitempty"`
	HasEvents bool   `json:"hasEvents"`
	IsPadding bool   `json:"isPadding"`
}

type monthGridView struct {
	Year         int           `json:"year"`
	Month        int           `json:"month"`
	FirstWeekday int           `json:"firstWeekday"`
	Slots        []daySlotView `json:"slots"`
}

func toMonthGridView(grid calendar.MonthGrid) monthGridView {
	slots := make([]daySlotView, 0, len(grid.Slots))
	for _, s := range grid.Slots {
		view := daySlotView{Day: s.Day, HasEvents: s.HasEvents, IsPadding: s.IsPadding()}
		if !s.IsPadding() {
			view.Date = s.Date.Format("2006-01-02")
		}
		slots = append(slots, view)
	}
	return monthGridView{
		Year:         grid.Year,
		Month:        int(grid.Month),
		FirstWeekday: grid.FirstWeekday,
		Slots:        slots,
	}
}

type notificationView struct {
	ID        string                  `json:"id"`
	Type      models.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Body      string                  `json:"body"`
	EventID   *string                 `json:"eventId,omitempty"`
	IsRead    bool                    `json:"isRead"`
	ReadAt    *time.Time              `json:"readAt,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

func toNotificationViews(notifications []models.AppNotification) []notificationView {
	out := make([]notificationView, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationView{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Body:      n.Body,
			EventID:   n.EventID,
			IsRead:    n.IsRead,
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}
