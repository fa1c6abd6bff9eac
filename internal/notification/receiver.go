package notification

import "fmt"

type Receiver struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Address formats the receiver as a mail recipient.
func (r Receiver) Address() string {
	return fmt.Sprintf("%s %s <%s>", r.FirstName, r.LastName, r.Email)
}

func receiverIDs(receivers []Receiver) []int64 {
	ids := make([]int64, 0, len(receivers))
	for _, r := range receivers {
		ids = append(ids, r.ID)
	}
	return ids
}

// uniqueBy keeps the first receiver for every key; empty keys are dropped.
func uniqueBy(receivers []Receiver, key func(Receiver) string) []Receiver {
	seen := make(map[string]struct{}, len(receivers))
	out := make([]Receiver, 0, len(receivers))
	for _, r := range receivers {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func byID(r Receiver) string {
	return fmt.Sprint(r.ID)
}

func byPhone(r Receiver) string {
	return r.Phone
}
