package app

import "github.com/bhupen98/dhukuti/internal/domain"

// Placeholder demo data carried over from the original backend for frontend
// compatibility. The member list is attached to every group regardless of
// real membership, and the activity feed is fixed. Both are stand-ins until
// a real membership roster and event log exist.

var demoMembersList = []domain.GroupMember{
	{Name: "Asha", Avatar: "https://randomuser.me/api/portraits/women/44.jpg"},
	{Name: "Raju", Avatar: "https://randomuser.me/api/portraits/men/32.jpg"},
	{Name: "Manish", Avatar: "https://randomuser.me/api/portraits/men/65.jpg"},
}

var demoActivityFeed = []domain.ActivityItem{
	{
		ID:       1,
		Title:    "Asha marked payment as received",
		Subtitle: "Transaction successful and verified.",
		Img:      "https://randomuser.me/api/portraits/women/44.jpg",
		Href:     "/dashboard/activity/1",
	},
	{
		ID:       2,
		Title:    "Raju joined your group",
		Subtitle: "Welcome Raju to Family Savings!",
		Img:      "https://randomuser.me/api/portraits/men/32.jpg",
		Href:     "/dashboard/activity/2",
	},
	{
		ID:       3,
		Title:    "Manish invited a new member",
		Subtitle: "Manish invited Sam to join.",
		Img:      "https://randomuser.me/api/portraits/men/65.jpg",
		Href:     "/dashboard/activity/3",
	},
}
