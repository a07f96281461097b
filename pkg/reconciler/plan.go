package reconciler

import (
	"github.com/agentstation/propscan/pkg/errors"
	"github.com/agentstation/propscan/pkg/properties"
)

// AddPlan is the outcome of comparing discovered properties with the
// remote collection.
type AddPlan struct {
	// Create lists the properties to create, in discovery order.
	Create []properties.DatasetProperty

	// Skip lists the properties already present remotely, or discovered
	// more than once.
	Skip []properties.DatasetProperty
}

// PlanAdditions decides which local properties must be created remotely.
// A property is created at most once even when several files or roots
// yield the same key.
func PlanAdditions(local []properties.DatasetProperty, remote []properties.RemoteProperty) AddPlan {
	known := properties.NewKeySet(remote...)

	var plan AddPlan
	for _, p := range local {
		key := p.Key()
		if known.Has(key) {
			plan.Skip = append(plan.Skip, p)
			continue
		}
		known.Add(key)
		plan.Create = append(plan.Create, p)
	}
	return plan
}

// ResolveTargets selects the remote records to delete. Without links every
// record is selected. Otherwise each link must equal the self link of a
// listed record; repeated links select their record once. An unknown link
// fails the whole resolution so that nothing is deleted.
func ResolveTargets(remote []properties.RemoteProperty, links []string) ([]properties.RemoteProperty, error) {
	if len(links) == 0 {
		return append([]properties.RemoteProperty(nil), remote...), nil
	}

	bySelf := make(map[string]properties.RemoteProperty, len(remote))
	for _, p := range remote {
		bySelf[p.Self()] = p
	}

	seen := make(map[string]bool, len(links))
	targets := make([]properties.RemoteProperty, 0, len(links))
	for _, link := range links {
		if seen[link] {
			continue
		}
		seen[link] = true

		p, ok := bySelf[link]
		if !ok {
			return nil, &errors.ResourceError{
				Operation: "remove",
				Resource:  "property",
				ID:        link,
				Message:   "property to remove does not exist",
				Err:       errors.NewNotFoundError("property", link),
			}
		}
		targets = append(targets, p)
	}
	return targets, nil
}
