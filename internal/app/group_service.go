/**
 * @description
 * Business logic for savings groups: payload validation, creation and
 * listing. Validation checks every field and reports all failures at once as
 * a field-to-messages map; nothing is persisted unless the whole payload is
 * valid.
 */
package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/bhupen98/dhukuti/internal/domain"
	"github.com/bhupen98/dhukuti/internal/store"
)

// Field limits are in characters, not bytes.
const (
	maxNameLength      = 100
	maxFrequencyLength = 50
)

// Validation messages kept identical to the previous backend's wire format.
const (
	msgRequired        = "This field is required."
	msgBlank           = "This field may not be blank."
	msgNonNegative     = "Ensure this value is greater than or equal to 0."
	msgBadDate         = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgMaxLengthFormat = "Ensure this field has no more than %d characters."
)

// GroupService handles group creation and listing.
type GroupService struct {
	groups store.GroupRepository
}

// NewGroupService creates a GroupService with the given repository.
func NewGroupService(groups store.GroupRepository) *GroupService {
	return &GroupService{groups: groups}
}

// Create validates the payload and persists a new group. On validation
// failure it returns FieldErrors and touches nothing.
func (s *GroupService) Create(ctx context.Context, req domain.CreateGroupRequest) (*domain.Group, error) {
	group, fieldErrs := validateGroup(req)
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	if err := s.groups.CreateGroup(ctx, group); err != nil {
		log.Printf("Error creating group %q: %v", group.Name, err)
		return nil, err
	}

	log.Printf("Group created: id=%d name=%q", group.ID, group.Name)
	return group, nil
}

// List returns all groups in insertion order, each carrying the placeholder
// member list the frontend renders.
func (s *GroupService) List(ctx context.Context) ([]domain.GroupWithMembers, error) {
	groups, err := s.groups.ListGroups(ctx)
	if err != nil {
		log.Printf("Error listing groups: %v", err)
		return nil, err
	}

	enriched := make([]domain.GroupWithMembers, len(groups))
	for i, g := range groups {
		enriched[i] = domain.GroupWithMembers{Group: g, MembersList: demoMembersList}
	}
	return enriched, nil
}

// Activity returns the static dashboard activity feed.
func (s *GroupService) Activity() []domain.ActivityItem {
	return demoActivityFeed
}

func validateGroup(req domain.CreateGroupRequest) (*domain.Group, FieldErrors) {
	fieldErrs := FieldErrors{}
	group := &domain.Group{}

	switch {
	case req.Name == nil:
		fieldErrs.add("name", msgRequired)
	case strings.TrimSpace(*req.Name) == "":
		fieldErrs.add("name", msgBlank)
	case utf8.RuneCountInString(*req.Name) > maxNameLength:
		fieldErrs.add("name", fmt.Sprintf(msgMaxLengthFormat, maxNameLength))
	default:
		group.Name = *req.Name
	}

	if req.Description != nil {
		group.Description = *req.Description
	}

	switch {
	case req.Amount == nil:
		fieldErrs.add("amount", msgRequired)
	case *req.Amount < 0:
		fieldErrs.add("amount", msgNonNegative)
	default:
		group.Amount = *req.Amount
	}

	switch {
	case req.Frequency == nil:
		fieldErrs.add("frequency", msgRequired)
	case strings.TrimSpace(*req.Frequency) == "":
		fieldErrs.add("frequency", msgBlank)
	case utf8.RuneCountInString(*req.Frequency) > maxFrequencyLength:
		fieldErrs.add("frequency", fmt.Sprintf(msgMaxLengthFormat, maxFrequencyLength))
	default:
		group.Frequency = *req.Frequency
	}

	switch {
	case req.Members == nil:
		fieldErrs.add("members", msgRequired)
	case *req.Members < 0:
		fieldErrs.add("members", msgNonNegative)
	default:
		group.Members = *req.Members
	}

	if req.StartDate == nil {
		fieldErrs.add("start_date", msgRequired)
	} else if date, err := domain.ParseDate(*req.StartDate); err != nil {
		fieldErrs.add("start_date", msgBadDate)
	} else {
		group.StartDate = date
	}

	return group, fieldErrs
}
