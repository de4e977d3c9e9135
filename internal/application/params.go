package application

import (
	"fmt"

	"jira-mcp-server/internal/domain"
)

// getStringParam extracts a string parameter from the arguments map.
// Returns an error if the parameter is required but missing or not a string.
func getStringParam(args map[string]interface{}, name string, required bool) (string, error) {
	value, exists := args[name]
	if !exists {
		if required {
			return "", &domain.Error{
				Code:    domain.InvalidParams,
				Message: fmt.Sprintf("missing required parameter: %s", name),
			}
		}
		return "", nil
	}

	strValue, ok := value.(string)
	if !ok {
		return "", &domain.Error{
			Code:    domain.InvalidParams,
			Message: fmt.Sprintf("parameter %s must be a string", name),
		}
	}

	return strValue, nil
}

// getIntParam extracts an integer parameter from the arguments map.
// Returns an error if the parameter is required but missing or not a number.
// Also returns an error if the parameter exists but is not a valid number type.
func getIntParam(args map[string]interface{}, name string, required bool) (int, error) {
	value, exists := args[name]
	if !exists {
		if required {
			return 0, &domain.Error{
				Code:    domain.InvalidParams,
				Message: fmt.Sprintf("missing required parameter: %s", name),
			}
		}
		return 0, nil
	}

	// Handle both float64 (from JSON) and int
	switch v := value.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		// If the parameter exists but is not a valid type, return an error
		// even if it's not required
		return 0, &domain.Error{
			Code:    domain.InvalidParams,
			Message: fmt.Sprintf("parameter %s must be an integer", name),
		}
	}
}

// getBoolParam extracts a boolean parameter from the arguments map.
// Missing optional parameters default to false.
func getBoolParam(args map[string]interface{}, name string, required bool) (bool, error) {
	value, exists := args[name]
	if !exists {
		if required {
			return false, &domain.Error{
				Code:    domain.InvalidParams,
				Message: fmt.Sprintf("missing required parameter: %s", name),
			}
		}
		return false, nil
	}

	boolValue, ok := value.(bool)
	if !ok {
		return false, &domain.Error{
			Code:    domain.InvalidParams,
			Message: fmt.Sprintf("parameter %s must be a boolean", name),
		}
	}

	return boolValue, nil
}

// requireProjectAllowed rejects project keys excluded by the configured
// project filter. Permission failures share the authentication error code.
func requireProjectAllowed(config *domain.Config, projectKey string) error {
	if config.IsProjectAllowed(projectKey) {
		return nil
	}
	return &domain.Error{
		Code:    domain.AuthenticationErrorCode,
		Message: fmt.Sprintf("project %s is not allowed by the configured project filter", projectKey),
	}
}

// getStringSliceParam extracts a string array parameter from the arguments
// map. JSON arrays arrive as []interface{}; each element must be a string.
// A missing parameter yields a nil slice.
func getStringSliceParam(args map[string]interface{}, name string) ([]string, error) {
	value, exists := args[name]
	if !exists {
		return nil, nil
	}

	rawSlice, ok := value.([]interface{})
	if !ok {
		return nil, &domain.Error{
			Code:    domain.InvalidParams,
			Message: fmt.Sprintf("parameter %s must be an array of strings", name),
		}
	}

	result := make([]string, 0, len(rawSlice))
	for _, item := range rawSlice {
		str, ok := item.(string)
		if !ok {
			return nil, &domain.Error{
				Code:    domain.InvalidParams,
				Message: fmt.Sprintf("parameter %s must contain only strings", name),
			}
		}
		result = append(result, str)
	}

	return result, nil
}
