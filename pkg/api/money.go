package api

import (
	"fmt"
	"strings"
)

// FormatINR renders an amount in minor units (paise) using Indian digit
// grouping, e.g. 11289075 -> "₹1,12,890.75". Negative amounts get a
// leading minus sign.
func FormatINR(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	rupees := minor / 100
	paise := minor % 100
	return fmt.Sprintf("%s₹%s.%02d", sign, groupIndian(rupees), paise)
}

// groupIndian inserts commas after the last three digits, then every two.
func groupIndian(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
