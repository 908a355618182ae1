package dto

import "github.com/google/uuid"

type Counts struct {
	Today int64 `json:"today" gorm:"column:today"`
	Week  int64 `json:"week" gorm:"column:week"`
	Month int64 `json:"month" gorm:"column:month"`
	Total int64 `json:"total" gorm:"column:total"`
}

type Amounts struct {
	Today float64 `json:"today" gorm:"column:today"`
	Week  float64 `json:"week" gorm:"column:week"`
	Month float64 `json:"month" gorm:"column:month"`
	Total float64 `json:"total" gorm:"column:total"`
}

type RenewalCounts struct {
	Due7    int64 `json:"due7" gorm:"column:due7"`
	Due30   int64 `json:"due30" gorm:"column:due30"`
	Overdue int64 `json:"overdue" gorm:"column:overdue"`
}

type Summary struct {
	Users         Counts        `json:"users"`
	Registrations Counts        `json:"registrations"`
	Revenue       Amounts       `json:"revenue"`
	ActiveMembers int64         `json:"activeMembers"`
	Renewals      RenewalCounts `json:"renewals"`
}

type MembershipTypeStat struct {
	MembershipTypeID uuid.UUID `json:"membership_type_id" gorm:"column:membership_type_id"`
	Name             string    `json:"name" gorm:"column:name"`
	Slug             string    `json:"slug" gorm:"column:slug"`
	Registrations    int64     `json:"registrations" gorm:"column:registrations"`
	Revenue          float64   `json:"revenue" gorm:"column:revenue"`
}

type TrendPoint struct {
	Date          string  `json:"date"`
	Registrations int64   `json:"registrations"`
	Revenue       float64 `json:"revenue"`
}
