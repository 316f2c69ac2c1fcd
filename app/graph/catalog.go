// Package graph exposes the public catalog as a read-only GraphQL schema:
//
//	{ restaurants(cuisine: "Egyptian") { id name rating menu { name price } } }
package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/elitetable/elitetable/app/models"
	"github.com/elitetable/elitetable/app/repositories"
	"github.com/elitetable/elitetable/app/services"
	"github.com/elitetable/elitetable/pkg/apperr"
	gql "github.com/elitetable/elitetable/pkg/graphql"
)

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func governorateMap(g models.Governorate) map[string]any {
	return map[string]any{"id": g.ID, "name": g.Name, "nameAr": deref(g.NameAr)}
}

func menuItemMap(m models.MenuItem) map[string]any {
	return map[string]any{
		"id":           m.ID,
		"restaurantId": m.RestaurantID,
		"name":         m.Name,
		"description":  m.Description,
		"price":        m.Price,
		"category":     m.Category,
		"image":        deref(m.Image),
		"available":    m.Available,
	}
}

func restaurantMap(r models.Restaurant) map[string]any {
	return map[string]any{
		"id":            r.ID,
		"name":          r.Name,
		"description":   r.Description,
		"cuisine":       r.Cuisine,
		"address":       r.Address,
		"phone":         deref(r.Phone),
		"image":         deref(r.Image),
		"governorateId": deref(r.GovernorateID),
		"districtId":    deref(r.DistrictID),
		"priceRange":    r.PriceRange,
		"rating":        r.Rating,
		"openingHours":  deref(r.OpeningHours),
	}
}

// NewSchema builds the catalog schema over the catalog service. Only active
// restaurants are reachable.
func NewSchema(catalog *services.CatalogService) (graphql.Schema, error) {
	governorate := graphql.NewObject(graphql.ObjectConfig{
		Name: "Governorate",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"nameAr": &graphql.Field{Type: graphql.String},
		},
	})

	menuItem := graphql.NewObject(graphql.ObjectConfig{
		Name: "MenuItem",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"restaurantId": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description":  &graphql.Field{Type: graphql.String},
			"price":        &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"category":     &graphql.Field{Type: graphql.String},
			"image":        &graphql.Field{Type: graphql.String},
			"available":    &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})

	menuFor := func(p graphql.ResolveParams, restaurantID string) (any, error) {
		items, err := catalog.Menu(p.Context, nil, restaurantID)
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(items))
		for i, m := range items {
			out[i] = menuItemMap(m)
		}
		return out, nil
	}

	restaurant := graphql.NewObject(graphql.ObjectConfig{
		Name: "Restaurant",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description":   &graphql.Field{Type: graphql.String},
			"cuisine":       &graphql.Field{Type: graphql.String},
			"address":       &graphql.Field{Type: graphql.String},
			"phone":         &graphql.Field{Type: graphql.String},
			"image":         &graphql.Field{Type: graphql.String},
			"governorateId": &graphql.Field{Type: graphql.ID},
			"districtId":    &graphql.Field{Type: graphql.ID},
			"priceRange":    &graphql.Field{Type: graphql.String},
			"rating":        &graphql.Field{Type: graphql.Float},
			"openingHours":  &graphql.Field{Type: graphql.String},
			"menu": &graphql.Field{
				Type: graphql.NewList(menuItem),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					src, _ := p.Source.(map[string]any)
					id, _ := src["id"].(string)
					return menuFor(p, id)
				},
			},
		},
	})

	str := func(args map[string]any, key string) string {
		s, _ := args[key].(string)
		return s
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"governorates": &graphql.Field{
				Type: graphql.NewList(governorate),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					govs, err := catalog.Governorates(p.Context)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]any, len(govs))
					for i, g := range govs {
						out[i] = governorateMap(g)
					}
					return out, nil
				},
			},
			"restaurants": &graphql.Field{
				Type: graphql.NewList(restaurant),
				Args: graphql.FieldConfigArgument{
					"governorateId": &graphql.ArgumentConfig{Type: graphql.ID},
					"districtId":    &graphql.ArgumentConfig{Type: graphql.ID},
					"cuisine":       &graphql.ArgumentConfig{Type: graphql.String},
					"search":        &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					rs, err := catalog.Restaurants(p.Context, repositories.RestaurantFilter{
						GovernorateID: str(p.Args, "governorateId"),
						DistrictID:    str(p.Args, "districtId"),
						Cuisine:       str(p.Args, "cuisine"),
						Search:        str(p.Args, "search"),
					})
					if err != nil {
						return nil, err
					}
					out := make([]map[string]any, len(rs))
					for i, r := range rs {
						out[i] = restaurantMap(r)
					}
					return out, nil
				},
			},
			"restaurant": &graphql.Field{
				Type: restaurant,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					r, err := catalog.Restaurant(p.Context, nil, str(p.Args, "id"))
					if apperr.IsKind(err, apperr.KindNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return restaurantMap(*r), nil
				},
			},
			"menu": &graphql.Field{
				Type: graphql.NewList(menuItem),
				Args: graphql.FieldConfigArgument{
					"restaurantId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return menuFor(p, str(p.Args, "restaurantId"))
				},
			},
		},
	})

	return gql.NewSchema(query)
}
