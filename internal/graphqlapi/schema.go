package graphqlapi

import (
	"fmt"

	"mediaflow/internal/auth"
	"mediaflow/internal/authz"
	"mediaflow/internal/catalog"

	"github.com/graphql-go/graphql"
)

// Resolver wires the query surface to the same catalog services the REST
// surface uses. Per-operation access rules live in Ops and are evaluated at
// the top of every resolver; ownership checks stay inside the services so
// the two surfaces cannot drift apart.
type Resolver struct {
	Contents *catalog.ContentService
	Ops      *authz.OperationTable
}

// DefaultOperationTable declares who may call each exposed operation.
// Operations absent from the table are denied, so adding a schema field
// without a rule fails closed.
func DefaultOperationTable() *authz.OperationTable {
	t := authz.NewOperationTable()

	readers := []auth.Role{auth.RoleViewer, auth.RoleCreator, auth.RoleAdmin}
	writers := []auth.Role{auth.RoleCreator, auth.RoleAdmin}

	t.Require("allContents", readers...)
	t.Require("contentsByType", readers...)
	t.Require("content", readers...)
	t.Require("contentCategories", readers...)
	t.Require("userContents", readers...)
	t.Require("userContentsByType", readers...)
	t.Require("myContents", readers...)
	t.Require("myContentsByType", readers...)

	t.Require("createContent", writers...)
	t.Require("updateContent", writers...)
	t.Require("deleteContent", writers...)
	t.Require("addCategoriesToContent", writers...)
	t.Require("removeCategoryFromContent", writers...)

	return t
}

// guard evaluates the operation rule for the resolved field.
func (r *Resolver) guard(p graphql.ResolveParams) error {
	return r.Ops.Decide(p.Context, p.Info.FieldName)
}

func intArg(p graphql.ResolveParams, name string) int {
	if v, ok := p.Args[name].(int); ok {
		return v
	}
	return 0
}

func pageArg(p graphql.ResolveParams) catalog.PageRequest {
	return catalog.PageRequest{Page: intArg(p, "page"), Size: intArg(p, "size")}
}

var contentTypeEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "ContentType",
	Values: graphql.EnumValueConfigMap{
		"VIDEO": &graphql.EnumValueConfig{Value: "VIDEO"},
		"IMAGE": &graphql.EnumValueConfig{Value: "IMAGE"},
	},
})

var videoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Video",
	Fields: graphql.Fields{
		"videoId":         &graphql.Field{Type: graphql.Int},
		"durationSeconds": &graphql.Field{Type: graphql.Int},
		"width":           &graphql.Field{Type: graphql.Int},
		"height":          &graphql.Field{Type: graphql.Int},
	},
})

var imageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Image",
	Fields: graphql.Fields{
		"imageId": &graphql.Field{Type: graphql.Int},
		"width":   &graphql.Field{Type: graphql.Int},
		"height":  &graphql.Field{Type: graphql.Int},
	},
})

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"categoryId":  &graphql.Field{Type: graphql.Int},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
	},
})

// Field names resolve off the model json tags via the default resolver.
var contentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Content",
	Fields: graphql.Fields{
		"contentId":      &graphql.Field{Type: graphql.Int},
		"format":         &graphql.Field{Type: graphql.String},
		"fileSizeMB":     &graphql.Field{Type: graphql.Int},
		"language":       &graphql.Field{Type: graphql.String},
		"title":          &graphql.Field{Type: graphql.String},
		"contentType":    &graphql.Field{Type: contentTypeEnum},
		"description":    &graphql.Field{Type: graphql.String},
		"recommendedAge": &graphql.Field{Type: graphql.Int},
		"storageUrl":     &graphql.Field{Type: graphql.String},
		"thumbnailUrl":   &graphql.Field{Type: graphql.String},
		"created":        &graphql.Field{Type: graphql.DateTime},
		"locationId":     &graphql.Field{Type: graphql.Int},
		"userId":         &graphql.Field{Type: graphql.Int},
		"video":          &graphql.Field{Type: videoType},
		"image":          &graphql.Field{Type: imageType},
		"categoryIds":    &graphql.Field{Type: graphql.NewList(graphql.Int)},
	},
})

var contentPageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ContentPage",
	Fields: graphql.Fields{
		"content":       &graphql.Field{Type: graphql.NewList(contentType)},
		"totalElements": &graphql.Field{Type: graphql.Int},
		"totalPages":    &graphql.Field{Type: graphql.Int},
		"pageNumber":    &graphql.Field{Type: graphql.Int},
		"pageSize":      &graphql.Field{Type: graphql.Int},
		"hasNext":       &graphql.Field{Type: graphql.Boolean},
		"hasPrevious":   &graphql.Field{Type: graphql.Boolean},
	},
})

var videoInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "VideoInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"durationSeconds": &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"width":           &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"height":          &graphql.InputObjectFieldConfig{Type: graphql.Int},
	},
})

var imageInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ImageInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"width":  &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"height": &graphql.InputObjectFieldConfig{Type: graphql.Int},
	},
})

var contentInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ContentInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"format":         &graphql.InputObjectFieldConfig{Type: graphql.String},
		"fileSizeMB":     &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"language":       &graphql.InputObjectFieldConfig{Type: graphql.String},
		"title":          &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"contentType":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(contentTypeEnum)},
		"description":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"recommendedAge": &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"storageUrl":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"thumbnailUrl":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		"locationId":     &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"video":          &graphql.InputObjectFieldConfig{Type: videoInput},
		"image":          &graphql.InputObjectFieldConfig{Type: imageInput},
		"categoryIds":    &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.Int)},
	},
})

func mapString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func mapInt(m map[string]interface{}, key string) int {
	if v, ok := m[key].(int); ok {
		return v
	}
	return 0
}

func mapIntList(m map[string]interface{}, key string) []int {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		if n, ok := v.(int); ok {
			out = append(out, n)
		}
	}
	return out
}

func decodeContentInput(arg interface{}) (catalog.Content, error) {
	m, ok := arg.(map[string]interface{})
	if !ok {
		return catalog.Content{}, fmt.Errorf("input must be an object")
	}
	c := catalog.Content{
		Format:         mapString(m, "format"),
		FileSizeMB:     mapInt(m, "fileSizeMB"),
		Language:       mapString(m, "language"),
		Title:          mapString(m, "title"),
		ContentType:    catalog.ContentType(mapString(m, "contentType")),
		Description:    mapString(m, "description"),
		RecommendedAge: mapInt(m, "recommendedAge"),
		StorageURL:     mapString(m, "storageUrl"),
		ThumbnailURL:   mapString(m, "thumbnailUrl"),
		LocationID:     mapInt(m, "locationId"),
		CategoryIDs:    mapIntList(m, "categoryIds"),
	}
	if v, ok := m["video"].(map[string]interface{}); ok {
		c.Video = &catalog.Video{
			DurationSeconds: mapInt(v, "durationSeconds"),
			Width:           mapInt(v, "width"),
			Height:          mapInt(v, "height"),
		}
	}
	if v, ok := m["image"].(map[string]interface{}); ok {
		c.Image = &catalog.Image{Width: mapInt(v, "width"), Height: mapInt(v, "height")}
	}
	return c, nil
}

var pagingArgs = graphql.FieldConfigArgument{
	"page": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
	"size": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
}

func withPaging(extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{}
	for k, v := range pagingArgs {
		args[k] = v
	}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

// NewSchema assembles the executable schema. It returns an error only on a
// misdeclared type graph, which is a programming mistake caught at startup.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"allContents": &graphql.Field{
				Type: contentPageType,
				Args: pagingArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.guard(p); err != nil {
						return nil, err
					}
					return r.Contents.List(p.Context, pageArg(p))
				},
			},
			"contentsByType": &graphql.Field{
				Type: contentPageType,
				Args: withPaging(graphql.FieldConfigArgument{
					"contentType": &graphql.ArgumentConfig{Type: graphql.NewNonNull(contentTypeEnum)},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.guard(p); err != nil {
						return nil, err
					}
					t := catalog.ContentType(mapString(p.Args, "contentType"))
					return r.Contents.ListByType(p.Context, t, pageArg(p))
				},
			},
			"myContents": &graphql.Field{
				Type: contentPageType,
				Args: pagingArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.guard(p); err != nil {
						return nil, err
					}
					return r.Contents.ListMine(p.Context, pageArg(p))
				},
			},
			"myContentsByType": &graphql.Field{
				Type: contentPageType,
				Args: withPaging(graphql.FieldConfigArgument{
					"contentType": &graphql.ArgumentConfig{Type: graphql.NewNonNull(contentTypeEnum)},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.guard(p); err != nil {
						return nil, err
					}
					t := catalog.ContentType(mapString(p.Args, "contentType"))
					return r.Contents.ListMineByType(p.Context, t, pageArg(p))
				},
			},
			"userContents": &graphql.Field{
				Type: contentPageType,
				Args: withPaging(graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.guard(p); err != nil {
						return nil, err
					}
					return r.Contents.ListByUser(p.Context, intArg(p, "userId"), pageArg(p))
				},
			},
			"userContentsByType": &graphql.Field{
				Type: contentPageType,
				Args: withPaging(graphql.FieldConfigArgument{
					"userId":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"contentType": &graphql.ArgumentConfig{Type: graphql.NewNonNull(contentTypeEnum)},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.guard(p); err != nil {
						return nil, err
					}
					t := catalog.ContentType(mapString(p.Args, "contentType"))
					return r.Contents.ListByUserAndType(p.Context, intArg(p, "userId"), t, pageArg(p))
				},
			},
			"content": &graphql.Field{
				Type: contentType,
				Args: graphql.FieldConfigArgument{
					"contentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.guard(p); err != nil {
						return nil, err
					}
					return r.Contents.Get(p.Context, intArg(p, "contentId"))
				},
			},
			"contentCategories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Args: graphql.FieldConfigArgument{
					"contentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.guard(p); err != nil {
						return nil, err
					}
					return r.Contents.Categories(p.Context, intArg(p, "contentId"))
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createContent": &graphql.Field{
				Type: contentType,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(contentInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.guard(p); err != nil {
						return nil, err
					}
					c, err := decodeContentInput(p.Args["input"])
					if err != nil {
						return nil, err
					}
					return r.Contents.Create(p.Context, c)
				},
			},
			"updateContent": &graphql.Field{
				Type: contentType,
				Args: graphql.FieldConfigArgument{
					"contentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"input":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(contentInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.guard(p); err != nil {
						return nil, err
					}
					c, err := decodeContentInput(p.Args["input"])
					if err != nil {
						return nil, err
					}
					c.ID = intArg(p, "contentId")
					return r.Contents.Update(p.Context, c)
				},
			},
			"deleteContent": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"contentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.guard(p); err != nil {
						return nil, err
					}
					if err := r.Contents.Delete(p.Context, intArg(p, "contentId")); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"addCategoriesToContent": &graphql.Field{
				Type: contentType,
				Args: graphql.FieldConfigArgument{
					"contentId":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"categoryIds": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.Int))},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.guard(p); err != nil {
						return nil, err
					}
					return r.Contents.AddCategories(p.Context, intArg(p, "contentId"), mapIntList(p.Args, "categoryIds"))
				},
			},
			"removeCategoryFromContent": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"contentId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"categoryId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.guard(p); err != nil {
						return nil, err
					}
					if err := r.Contents.RemoveCategory(p.Context, intArg(p, "contentId"), intArg(p, "categoryId")); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}
